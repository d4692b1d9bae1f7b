package commands

import (
	"net/http"

	"github.com/battlesnakeio/gridsnake/api"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	apiListen  = ":3005"
	promEnable = true
	promListen = ":9000"
)

func init() {
	serveCmd.Flags().StringVarP(&apiListen, "listen", "l", apiListen, "api address to listen on")
	serveCmd.Flags().BoolVar(&promEnable, "prometheus", promEnable, "enable prometheus metrics")
	serveCmd.Flags().StringVar(&promListen, "prometheus-listen", promListen, "prometheus http endpoint")
}

var serveCmd = &cobra.Command{
	Use:    "serve",
	Short:  "serves recorded games over http",
	PreRun: func(c *cobra.Command, args []string) { prometheus() },
	RunE: func(c *cobra.Command, args []string) error {
		store, closeStore, err := openStore(storeKind)
		if err != nil {
			return err
		}
		defer closeStore()

		s := api.New(apiListen, store)
		log.WithFields(log.Fields{
			"listen": apiListen,
			"store":  storeKind,
		}).Info("gridsnake api serving")
		return s.WaitForExit()
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
