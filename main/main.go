package main

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rawbytedev/bencode"
	"github.com/rawbytedev/bencode/pkg/envelope"
	"github.com/spf13/pflag"
)

type fileEntry struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

type metainfo struct {
	Announce    string      `bencode:"announce"`
	Name        string      `bencode:"name"`
	PieceLength int         `bencode:"piece length"`
	Pieces      []byte      `bencode:"pieces"`
	Files       []fileEntry `bencode:"files"`
}

func main() {
	iterations := pflag.IntP("iterations", "n", 10000, "encode/decode round trips to run")
	profile := pflag.String("memprofile", "mem.prof", "heap profile output path (empty to skip)")
	pprofAddr := pflag.String("pprof", "", "serve net/http/pprof on this address, e.g. localhost:6060")
	compress := pflag.Bool("envelope", false, "wrap each payload in a compressed envelope")
	hold := pflag.Duration("hold", 0, "keep the process alive after the run (for pprof)")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *pprofAddr != "" {
		go func() {
			logger.Error("pprof server stopped", "error", http.ListenAndServe(*pprofAddr, nil))
		}()
	}
	runtime.MemProfileRate = 1

	doc := metainfo{
		Announce:    "http://tracker.example/announce",
		Name:        "azerty",
		PieceLength: 262144,
		Pieces:      make([]byte, 20*16),
		Files: []fileEntry{
			{Length: 100, Path: []string{"hello", "world"}},
			{Length: 250, Path: []string{"random"}},
		},
	}
	codec := bencode.NewCodec(bencode.Options{})

	start := time.Now()
	var size int
	for i := 0; i < *iterations; i++ {
		data, err := codec.Marshal(doc)
		if err != nil {
			logger.Error("marshal failed", "error", err)
			os.Exit(1)
		}
		if *compress {
			if data, err = envelope.Seal(data, envelope.FlagCompressed); err == nil {
				data, _, err = envelope.Open(data)
			}
			if err != nil {
				logger.Error("envelope failed", "error", err)
				os.Exit(1)
			}
		}
		size = len(data)
		var out metainfo
		if err := codec.Unmarshal(data, &out); err != nil {
			logger.Error("unmarshal failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("run complete", "iterations", *iterations, "payload", size, "elapsed", time.Since(start))

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			logger.Error("create profile", "error", err)
			os.Exit(1)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			logger.Error("write profile", "error", err)
		}
		f.Close()
	}
	time.Sleep(*hold)
}
