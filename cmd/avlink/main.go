// Command avlink streams camera video and microphone audio to a peer over UDP
// and plays back what the peer sends.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdin).ExecuteContext(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("avlink failed")
		stop()
		os.Exit(1)
	}
}
