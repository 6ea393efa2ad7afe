package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
)

// runWorker consumes the render queue and runs the relay until SIGINT/SIGTERM.
func runWorker(parent context.Context, container *Container) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderCfg := container.Config.Render
	if !slices.Contains(container.Config.Jobx.Queues, renderCfg.Queue) {
		logx.Warnf("render queue %q is not in JOBX_QUEUES %v; nothing will consume it", renderCfg.Queue, container.Config.Jobx.Queues)
	}

	container.Jobs.Register(renderCfg.Queue, container.renderProcessor().Handler())

	relay := rendersrv.NewRelay(container.RenderJobs, container.Jobs, renderCfg.Queue, renderCfg.RelayAfter)
	container.Jobs.Schedule("render-relay", renderCfg.RelayInterval, relay.Run)

	logx.WithFields(logx.Fields{
		"queue":       renderCfg.Queue,
		"concurrency": container.Config.Jobx.Concurrency,
		"consumer":    container.Config.Jobx.ConsumerName,
	}).Info("render worker ready")

	return container.Jobs.Start(ctx)
}
