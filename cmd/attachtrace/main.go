package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/bridge"
	"github.com/wippyai/attachments/codec"
	"github.com/wippyai/attachments/guestmem"
	"github.com/wippyai/attachments/stream"
)

func main() {
	var (
		words       = flag.String("words", "red,green,red,blue,green", "Comma-separated words to encode")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log store and codec activity")
		guest       = flag.Bool("guest", false, "Transcode through a WebAssembly guest's linear memory")
	)
	flag.Parse()

	os.Exit(run(splitWords(*words), *interactive, *verbose, *guest))
}

// run returns the process exit code. Deferred calls, including the logger
// sync, complete before main exits.
func run(words []string, interactive, verbose, guest bool) int {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer logger.Sync()
		setLoggers(logger)
	}

	if interactive {
		if err := runInteractive(words, guest); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	t, err := roundTrip(context.Background(), words, guest)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return 1
	}
	fmt.Print(renderTrace(t, terminalWidth()))
	return 0
}

func setLoggers(l *zap.Logger) {
	attach.SetLogger(l.Named("attach"))
	codec.SetLogger(l.Named("codec"))
	stream.SetLogger(l.Named("stream"))
	bridge.SetLogger(l.Named("bridge"))
	guestmem.SetLogger(l.Named("guestmem"))
}

func splitWords(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
