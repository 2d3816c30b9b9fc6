package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"subpager/internal/fixture"
	"subpager/internal/logging"
)

func newServeFixtureCmd(v *viper.Viper) *cobra.Command {
	var opts fixture.Options
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-fixture",
		Short: "Serve a fake community feed for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if logFile := v.GetString("log_file"); logFile != "" {
				closeLog, err := logging.Init(logFile, v.GetBool("debug"))
				if err != nil {
					return err
				}
				defer closeLog()
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logging.L(logging.CatFixture).Info("serving fixture",
				zap.String("addr", addr),
				zap.Int("posts", opts.PostsPerCommunity))
			cmd.Printf("fixture feed on http://%s\n", addr)
			return fixture.New(opts).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8081", "listen address")
	cmd.Flags().IntVar(&opts.PostsPerCommunity, "posts", 200, "posts generated per community")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for generated data, 0 is random")
	cmd.Flags().DurationVar(&opts.Latency, "latency", 0, "delay added to every response")
	return cmd
}
