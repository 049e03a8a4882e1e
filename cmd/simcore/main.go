// Command simcore boots a session from the configured content mounts and
// map, then drives the fixed-tick simulation loop until --ticks ticks
// have run or it is interrupted. Grounded on the teacher's own root
// main.go: text-handler slog setup, a banner, signal.NotifyContext
// shutdown, and a Unix-socket listener goroutine — repurposed here for
// the diagnostic console instead of the game-state IPC link.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/osc-sim/simcore/internal/config"
	"github.com/osc-sim/simcore/internal/diagconsole"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/session"
	"github.com/osc-sim/simcore/internal/sim"
)

const banner = `
 ___ _ _ __  ___ ___ _ __ ___
/ __| | '_ \/ __/ _ \ '__/ _ \
\__ \ | | | \__ \  __/ | |  __/
|___/_|_| |_|___/\___|_|  \___|

deterministic RTS simulation core`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		slog.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var host script.Host = script.NullHost{}
	var diag *session.DiagHost
	if cfg.AnyDiagnostic() {
		diag = session.NewDiagHost(logger)
		host = diag
	}

	state, err := session.Boot(cfg, host, logger)
	if err != nil {
		slog.Error("failed to boot session", "error", err)
		os.Exit(1)
	}

	if cfg.DiagSock != "" {
		srv := diagconsole.NewServer(state, logger)
		go func() {
			if err := srv.Serve(ctx, cfg.DiagSock); err != nil {
				slog.Error("diagnostic console stopped", "error", err)
			}
		}()
		slog.Info("diagnostic console listening", "path", cfg.DiagSock)
	}

	if diag != nil {
		if err := session.RunDiagnostics(cfg, state, diag, logger); err != nil {
			slog.Error("diagnostic scenario failed", "error", err)
			os.Exit(1)
		}
		slog.Info("diagnostic scenarios complete")
		if cfg.Ticks <= 0 && cfg.DiagSock == "" {
			return
		}
	}

	runTicks(ctx, state, cfg)

	slog.Info("shutting down")
}

// runTicks drives the simulation forward a fixed number of times
// (--ticks N). Without a positive --ticks it runs no ticks itself and
// only blocks until ctx is cancelled, keeping the process up as a
// long-running session host.
func runTicks(ctx context.Context, state *sim.State, cfg *config.Config) {
	if cfg.Ticks > 0 {
		for i := 0; i < cfg.Ticks; i++ {
			select {
			case <-ctx.Done():
				return
			default:
				state.Tick()
			}
		}
		return
	}

	<-ctx.Done()
}
