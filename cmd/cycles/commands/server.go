package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lightcycles/engine/api"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	apiListen          = ":3005"
	workerThreads      = 4
	workerPollInterval = 1 * time.Second
	promEnable         = true
	promListen         = ":9000"
)

func init() {
	serverCmd.Flags().StringVarP(&apiListen, "listen", "l", apiListen, "api address to listen on")
	serverCmd.Flags().IntVarP(&workerThreads, "threads", "t", workerThreads, "worker threads, this is the amount of concurrent matches the server runs")
	serverCmd.Flags().DurationVarP(&workerPollInterval, "poll-interval", "p", workerPollInterval, "worker poll interval")
	serverCmd.Flags().BoolVar(&promEnable, "prometheus", promEnable, "enable the separate prometheus listener")
	serverCmd.Flags().StringVar(&promListen, "prometheus-listen", promListen, "prometheus http endpoint")
}

var serverCmd = &cobra.Command{
	Use:    "server",
	Short:  "serves the api and runs the workers for started matches",
	PreRun: func(c *cobra.Command, args []string) { prometheus() },
	RunE: func(c *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			log.Info("shutting down")
			cancel()
		}()

		ctrl := controller.New(store)
		server := api.New(apiListen, ctrl)

		wg := &sync.WaitGroup{}
		wg.Add(workerThreads)
		for i := 0; i < workerThreads; i++ {
			w := &worker.Worker{
				Store:        store,
				PollInterval: workerPollInterval,
			}
			go func(i int) {
				defer wg.Done()
				log.WithField("worker", i).Info("cycles worker starting")
				w.Run(ctx, i)
			}(i)
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("api did not shut down cleanly")
			}
		}()

		err = server.WaitForExit()
		cancel()
		wg.Wait()
		return err
	},
}

func prometheus() {
	if !promEnable {
		log.Info("prometheus exporter not enabled")
		return
	}

	log.WithField("addr", promListen).Info("starting prometheus exporter")
	go func() {
		r := http.NewServeMux()
		r.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(promListen, r); err != nil {
			log.WithError(err).Warn("prometheus failed to listen")
		}
	}()
}
