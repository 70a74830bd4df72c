//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Softspoken runs the OT extension between two peers over TCP. The
// receiver listens for the sender with -r and the sender dials the
// receiver.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/softspoken/env"
	"github.com/markkurossi/softspoken/log"
	"github.com/markkurossi/softspoken/ot"
	"github.com/markkurossi/softspoken/otext"
	"github.com/markkurossi/softspoken/p2p"
	"github.com/markkurossi/softspoken/timing"
	"github.com/markkurossi/softspoken/vole"
)

type options struct {
	receiver   bool
	addr       string
	count      int
	random     bool
	base       string
	dealer     string
	check      bool
	cpuprofile string
	config     *env.Config
}

func main() {
	receiver := flag.Bool("r", false, "OT receiver mode")
	addr := flag.String("addr", ":8080", "receiver address")
	count := flag.Int("n", 1<<20, "number of OTs")
	fieldBits := flag.Int("k", env.DefaultFieldBits,
		"subspace VOLE field bits (1-8)")
	threads := flag.Int("threads", 1, "VOLE expansion threads (-1 for all CPUs)")
	base := flag.String("base", "co", "base OT: co or simplest")
	dealer := flag.String("dealer", "",
		"derive the base VOLEs from the shared `seed` (insecure)")
	random := flag.Bool("random", false, "random OT mode")
	verify := flag.Bool("verify", false, "verify chunk block indices")
	check := flag.Bool("check", false, "check results with the peer")
	verbose := flag.Int("v", 0, "log verbosity (0-2)")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	flag.Parse()

	logger := log.GetLogger(*verbose)

	opts := &options{
		receiver:   *receiver,
		addr:       *addr,
		count:      *count,
		random:     *random,
		base:       *base,
		dealer:     *dealer,
		check:      *check,
		cpuprofile: *cpuprofile,
		config: &env.Config{
			Logger:           logger,
			FieldBits:        *fieldBits,
			NumThreads:       *threads,
			VerifyBlockIndex: *verify,
		},
	}
	if err := run(opts); err != nil {
		logger.Error(err, "softspoken failed")
		os.Exit(1)
	}
}

// run runs one extension. The CPU profile is complete when run
// returns, also on errors.
func run(opts *options) error {
	logger := opts.config.GetLogger()
	k := opts.config.FieldBits

	if k < env.MinFieldBits || k > env.MaxFieldBits {
		return errors.Newf("invalid field bits %d", k)
	}
	if opts.count < 0 {
		return errors.Newf("invalid OT count %d", opts.count)
	}

	if len(opts.cpuprofile) > 0 {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return errors.Wrap(err, "could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = log.ContextWithLogger(ctx, logger)

	var conn *p2p.Conn
	var err error
	if opts.receiver {
		conn, err = p2p.Listen(ctx, opts.addr)
	} else {
		conn, err = p2p.Dial(ctx, opts.addr)
	}
	if err != nil {
		return err
	}

	if opts.receiver {
		err = runReceiver(ctx, opts, conn)
	} else {
		err = runSender(ctx, opts, conn)
	}
	if err != nil {
		conn.Close()
		return err
	}
	return conn.Close()
}

func newBaseOT(name string, config *env.Config) (ot.OT, error) {
	switch name {
	case "co":
		return ot.NewCO(config.GetRandom()), nil
	case "simplest":
		return ot.NewSimplest(config.GetRandom()), nil
	default:
		return nil, errors.Newf("unknown base OT: %s", name)
	}
}

func runSender(ctx context.Context, opts *options, conn *p2p.Conn) error {
	timer := timing.NewTiming()
	sender := otext.NewSender(opts.config)

	if len(opts.dealer) > 0 {
		_, expander, err := vole.Dealer([]byte(opts.dealer),
			opts.config.GetFieldBits(), opts.config.GetNumThreads())
		if err != nil {
			return err
		}
		sender.SetBase(expander)
		timer.Sample("Dealer", 0)
	} else {
		base, err := newBaseOT(opts.base, opts.config)
		if err != nil {
			return err
		}
		if err := sender.GenBaseOTs(ctx, base, conn); err != nil {
			return err
		}
		timer.Sample("Base OTs ("+opts.base+")", 0)
	}

	messages := make([]ot.MessagePair, opts.count)

	var err error
	if opts.random {
		err = sender.SendRandom(ctx, messages, opts.config.GetRandom(), conn)
	} else {
		err = sender.Send(ctx, messages, opts.config.GetRandom(), conn)
	}
	if err != nil {
		return err
	}
	timer.Sample("Extend", opts.count)

	if opts.check {
		var data ot.BlockData
		for _, m := range messages {
			if err := conn.SendBlock(m.M0, &data); err != nil {
				return err
			}
			if err := conn.SendBlock(m.M1, &data); err != nil {
				return err
			}
		}
		if err := conn.Flush(); err != nil {
			return err
		}
		timer.Sample("Check", 0)
	}

	fmt.Printf("Sent %s OTs, k=%d\n", timing.Count(opts.count),
		opts.config.GetFieldBits())
	timer.Print(conn.Stats)
	return nil
}

func runReceiver(ctx context.Context, opts *options, conn *p2p.Conn) error {
	timer := timing.NewTiming()
	receiver := otext.NewReceiver(opts.config)

	if len(opts.dealer) > 0 {
		expander, _, err := vole.Dealer([]byte(opts.dealer),
			opts.config.GetFieldBits(), opts.config.GetNumThreads())
		if err != nil {
			return err
		}
		receiver.SetBase(expander)
		timer.Sample("Dealer", 0)
	} else {
		base, err := newBaseOT(opts.base, opts.config)
		if err != nil {
			return err
		}
		if err := receiver.GenBaseOTs(ctx, base, conn); err != nil {
			return err
		}
		timer.Sample("Base OTs ("+opts.base+")", 0)
	}

	choices := make([]bool, opts.count)
	messages := make([]ot.Block, opts.count)
	if !opts.random {
		buf := make([]byte, opts.count)
		if _, err := io.ReadFull(opts.config.GetRandom(), buf); err != nil {
			return err
		}
		for i, v := range buf {
			choices[i] = v&1 == 1
		}
	}

	var err error
	if opts.random {
		err = receiver.ReceiveRandom(ctx, choices, messages,
			opts.config.GetRandom(), conn)
	} else {
		err = receiver.Receive(ctx, choices, messages,
			opts.config.GetRandom(), conn)
	}
	if err != nil {
		return err
	}
	timer.Sample("Extend", opts.count)

	if opts.check {
		var data ot.BlockData
		var pair ot.MessagePair
		for i, m := range messages {
			if err := conn.ReceiveBlock(&pair.M0, &data); err != nil {
				return err
			}
			if err := conn.ReceiveBlock(&pair.M1, &data); err != nil {
				return err
			}
			if !pair.Get(choices[i]).Equal(m) {
				return errors.Newf("OT %d: message mismatch", i)
			}
		}
		timer.Sample("Check", 0)
	}

	fmt.Printf("Received %s OTs, k=%d\n", timing.Count(opts.count),
		opts.config.GetFieldBits())
	timer.Print(conn.Stats)
	return nil
}
