// The MIT License (MIT)
//
// # Copyright (c) 2026 wipestream
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/wipestream/wipestream/pipeline"
	"github.com/wipestream/wipestream/rng"
	"github.com/wipestream/wipestream/sink"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// add more log flags for debugging
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "wipestream"
	myApp.Usage = "overwrite a block device with a cryptographically seeded random stream"
	myApp.UsageText = "wipestream [options] <target>"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "skip,s",
			Value: "0",
			Usage: "bytes to seek past before writing, accepts K/M/G/T suffix (x1024)",
		},
		cli.StringFlag{
			Name:  "blocksize,b",
			Value: "100M",
			Usage: "size of one random block, accepts K/M/G/T suffix (x1024)",
		},
		cli.IntFlag{
			Name:  "buffersize,u",
			Value: 5,
			Usage: "block queue capacity in blocks",
		},
		cli.IntFlag{
			Name:  "blocks_per_seed,z",
			Value: 100,
			Usage: "blocks produced per seed before rekeying from kernel entropy",
		},
		cli.StringFlag{
			Name:  "crypt",
			Value: rng.DefaultSuite,
			Usage: "keystream suite: chacha20, xchacha20, aes-256-ctr, aes-128-ctr",
		},
		cli.BoolFlag{
			Name:  "disable-rdrand",
			Usage: "disable XORing an auxiliary random source over the keystream",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "suppress the once-per-second progress line",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when the value is not empty, the config path must exists
			Usage: "config from json file, which will override the command from shell",
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6060",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Target = c.Args().First()
		config.Skip = c.String("skip")
		config.Blocksize = c.String("blocksize")
		config.BufferSize = c.Int("buffersize")
		config.BlocksPerSeed = c.Int("blocks_per_seed")
		config.Crypt = c.String("crypt")
		config.DisableRdrand = c.Bool("disable-rdrand")
		config.Quiet = c.Bool("quiet")
		config.Log = c.String("log")
		config.Pprof = c.Bool("pprof")

		if c.String("c") != "" {
			err := parseJSONConfig(&config, c.String("c"))
			checkError(err)
		}

		// log redirect
		if config.Log != "" {
			f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			checkError(err)
			defer f.Close()
			log.SetOutput(f)
		}

		if config.Target == "" {
			cli.ShowAppHelp(c)
			return cli.NewExitError("wipestream: output target is required", 1)
		}

		skip, err := ParseSize(config.Skip)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("wipestream: bad skip: %v", err), 1)
		}
		blocksize, err := ParseSize(config.Blocksize)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("wipestream: bad blocksize: %v", err), 1)
		}
		if blocksize < 1 {
			return cli.NewExitError("wipestream: blocksize must be at least one byte", 1)
		}
		if config.BufferSize < 1 {
			return cli.NewExitError("wipestream: buffersize must be at least one block", 1)
		}
		if config.BlocksPerSeed < 1 {
			return cli.NewExitError("wipestream: blocks_per_seed must be at least one", 1)
		}

		suite := rng.Select(config.Crypt)

		log.Println("version:", VERSION)
		log.Println("target:", config.Target)
		log.Println("skip:", skip)
		log.Println("blocksize:", blocksize)
		log.Println("buffersize:", config.BufferSize)
		log.Println("blocks_per_seed:", config.BlocksPerSeed)
		log.Println("crypt:", suite.Name)
		log.Println("seed size:", suite.SeedSize())
		log.Println("quiet:", config.Quiet)
		log.Println("pprof:", config.Pprof)

		var aux rng.Aux
		if config.DisableRdrand {
			log.Println("aux rng: disabled")
		} else if aux = rng.NewAux(); aux == nil {
			color.Red("WARNING: auxiliary random source unavailable, writing bare keystream")
		} else {
			log.Println("aux rng: enabled")
		}

		out, err := sink.Open(config.Target)
		checkError(err)
		defer out.Close()
		if skip > 0 {
			checkError(out.Skip(skip))
		}

		entropy, err := rng.KernelSource()
		checkError(err)
		defer entropy.Close()

		pl, err := pipeline.New(pipeline.Config{
			Blocksize:     int(blocksize),
			BufferSize:    config.BufferSize,
			BlocksPerSeed: config.BlocksPerSeed,
			Suite:         suite,
			Entropy:       entropy,
			Aux:           aux,
		})
		checkError(err)

		go watchSignals(pl)

		if config.Pprof {
			go http.ListenAndServe(":6060", nil)
		}

		if !config.Quiet {
			go reportProgress(pl)
		}

		err = pl.Run(out)
		if !config.Quiet {
			fmt.Println()
		}
		if err != nil {
			log.Printf("%+v\n", err)
			os.Exit(1)
		}

		log.Printf("finished: %d bytes written", pl.BytesWritten())
		return nil
	}
	myApp.Run(os.Args)
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", errors.WithStack(err))
		os.Exit(1)
	}
}
