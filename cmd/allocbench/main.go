// Command allocbench compares the default heap with the chunk allocator
// for the containers in this module.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

var elements = flag.Int("n", 100000, "elements per scenario")
var chunk = flag.Int("chunk", 1024, "chunk capacity in elements")
var mmap = flag.Bool("mmap", false, "take chunks of pointer-free types from mmap")
var asJSON = flag.Bool("json", false, "print the report as json")
var port = flag.String("port", "", "serve GET /report on this port instead of printing")
var verbose = flag.Bool("v", false, "debug logging")

func main() {
	flag.Parse()
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := Config{N: *elements, Chunk: *chunk, Mmap: *mmap}
	if *port != "" {
		log.WithField("port", *port).Info("serving reports")
		if err := fasthttp.ListenAndServe(":"+*port, handler(cfg, log)); err != nil {
			log.Fatal(err)
		}
		return
	}

	rep, err := Run(cfg, log)
	if err != nil {
		log.Fatal(err)
	}
	if *asJSON {
		err = writeJSON(os.Stdout, rep)
	} else {
		err = writeText(os.Stdout, rep)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func handler(cfg Config, log logrus.FieldLogger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() || string(ctx.Path()) != "/report" {
			ctx.Error("not found", fasthttp.StatusNotFound)
			return
		}
		rep, err := Run(cfg, log)
		if err != nil {
			log.WithError(err).Error("report")
			ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
			return
		}
		ctx.SetContentType("application/json")
		if err := writeJSON(ctx, rep); err != nil {
			log.WithError(err).Error("write report")
		}
	}
}
