package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/orbitforge/astro"
)

const dateFormat = "2006-01-02 15:04:05"

var (
	verbose  bool
	scenario string
	date     string
	logger   kitlog.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "astro",
		Short: "Orbital mechanics planners on the two-body catalog",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
			if verbose {
				logger = level.NewFilter(logger, level.AllowDebug())
			} else {
				logger = level.NewFilter(logger, level.AllowInfo())
			}
			logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&scenario, "scenario", "", "scenario YAML file (default: built-in solar system)")
	root.PersistentFlags().StringVar(&date, "date", "", "calendar date for body positions, e.g. \"2026-08-23 00:00:00\"")

	root.AddCommand(hohmannCmd(), closestCmd(), interceptCmd(), transferCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadBodies returns the scenario body tree, or the built-in catalog when no
// scenario file is given, optionally re-seeded at a calendar date.
func loadBodies() (map[string]*astro.Body, error) {
	var bodies map[string]*astro.Body
	if scenario != "" {
		s, err := astro.LoadScenario(scenario)
		if err != nil {
			return nil, err
		}
		bodies, err = s.BuildBodies()
		if err != nil {
			return nil, err
		}
	} else {
		bodies = astro.SolarSystem(0)
	}
	if date != "" {
		at, err := time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parsing --date: %w", err)
		}
		if err := astro.PlaceAtDate(bodies, at, 0); err != nil {
			return nil, err
		}
	}
	return bodies, nil
}

func hohmannCmd() *cobra.Command {
	var bodyName string
	var r1, r2 float64
	cmd := &cobra.Command{
		Use:   "hohmann",
		Short: "Closed-form two-burn transfer between circular orbits",
		RunE: func(cmd *cobra.Command, args []string) error {
			bodies, err := loadBodies()
			if err != nil {
				return err
			}
			body, err := astro.BodyFromMap(bodies, bodyName)
			if err != nil {
				return err
			}
			ht := astro.HohmannBurn(body.GM, r1, r2)
			align := astro.HohmannAlignmentAngle(body.GM, r1, r2)

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "departure Δv\t%.2f m/s\n", ht.DepartureDV)
			fmt.Fprintf(w, "arrival Δv\t%.2f m/s\n", ht.ArrivalDV)
			fmt.Fprintf(w, "total Δv\t%.2f m/s\n", ht.TotalDV())
			fmt.Fprintf(w, "coast\t%.0f s (%.2f days)\n", ht.CoastTime, ht.CoastTime/86400)
			fmt.Fprintf(w, "alignment angle\t%.3f°\n", astro.Rad2deg(align))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&bodyName, "body", "Earth", "central body")
	cmd.Flags().Float64Var(&r1, "r1", 0, "departure circular radius, m")
	cmd.Flags().Float64Var(&r2, "r2", 0, "target circular radius, m")
	cmd.MarkFlagRequired("r1")
	cmd.MarkFlagRequired("r2")
	return cmd
}

func closestCmd() *cobra.Command {
	var aName, bName string
	cmd := &cobra.Command{
		Use:   "closest",
		Short: "Time and distance of closest approach of two bodies",
		RunE: func(cmd *cobra.Command, args []string) error {
			bodies, err := loadBodies()
			if err != nil {
				return err
			}
			a, err := astro.BodyFromMap(bodies, aName)
			if err != nil {
				return err
			}
			b, err := astro.BodyFromMap(bodies, bName)
			if err != nil {
				return err
			}
			ks := astro.NewUniversalKeplerSolver()
			enc, err := astro.ClosestApproachBodies(ks, a, b)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "time\t%.0f s (%.2f days from epoch)\n", enc.Time, enc.Time/86400)
			fmt.Fprintf(w, "distance\t%.0f m (%.4f AU)\n", enc.Distance, enc.Distance/astro.AU)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&aName, "a", "Earth", "first body")
	cmd.Flags().StringVar(&bName, "b", "Mars", "second body")
	return cmd
}

func interceptCmd() *cobra.Command {
	var fromName, toName, porkchop string
	var launchEnd, launchStep, durMin, durMax, durStep, acceptable float64
	cmd := &cobra.Command{
		Use:   "intercept",
		Short: "Grid search for the cheapest transfer arc between two bodies",
		RunE: func(cmd *cobra.Command, args []string) error {
			bodies, err := loadBodies()
			if err != nil {
				return err
			}
			from, err := astro.BodyFromMap(bodies, fromName)
			if err != nil {
				return err
			}
			to, err := astro.BodyFromMap(bodies, toName)
			if err != nil {
				return err
			}
			if from.Primary == nil || from.Primary != to.Primary {
				return fmt.Errorf("%s and %s do not share a primary", fromName, toName)
			}
			primary := from.Primary
			ks := astro.NewUniversalKeplerSolver()
			gs := astro.NewUniversalGaussSolver()

			var observer func(astro.InterceptPoint)
			var exporter *astro.PorkchopExporter
			if porkchop != "" {
				f, err := os.Create(porkchop)
				if err != nil {
					return err
				}
				defer f.Close()
				exporter, err = astro.NewPorkchopExporter(f)
				if err != nil {
					return err
				}
				observer = exporter.Observe
			}

			it, plan, err := astro.PlanIntercept(context.Background(), ks, gs, astro.InterceptRequest{
				Body:         primary,
				PrimaryState: primary.State,
				From:         from.State,
				To:           to.State,
				LaunchStart:  0,
				LaunchEnd:    launchEnd * 86400,
				LaunchStep:   launchStep * 86400,
				DurationMin:  durMin * 86400,
				DurationMax:  durMax * 86400,
				DurationStep: durStep * 86400,
				AcceptableDV: acceptable,
				Observer:     observer,
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			if exporter != nil {
				if err := exporter.Close(); err != nil {
					return err
				}
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "launch\t%+.2f days from epoch\n", it.Launch/86400)
			fmt.Fprintf(w, "duration\t%.2f days\n", it.Duration/86400)
			fmt.Fprintf(w, "Δv\t%.1f m/s\n", plan.TotalDeltaV())
			fmt.Fprintf(w, "arc\t%s\n", wayName(it.ShortWay))
			fmt.Fprintf(w, "arrival closing speed\t%.1f m/s\n", it.ArrivalRelativeSpeed)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&fromName, "from", "Earth", "departure body")
	cmd.Flags().StringVar(&toName, "to", "Mars", "target body")
	cmd.Flags().Float64Var(&launchEnd, "launch-window", 780, "launch window length, days")
	cmd.Flags().Float64Var(&launchStep, "launch-step", 10, "launch grid step, days")
	cmd.Flags().Float64Var(&durMin, "dur-min", 120, "minimum transfer duration, days")
	cmd.Flags().Float64Var(&durMax, "dur-max", 400, "maximum transfer duration, days")
	cmd.Flags().Float64Var(&durStep, "dur-step", 10, "duration grid step, days")
	cmd.Flags().Float64Var(&acceptable, "acceptable-dv", 0, "stop early below this Δv, m/s (0 = exhaustive)")
	cmd.Flags().StringVar(&porkchop, "porkchop", "", "write feasible cells to this CSV file")
	return cmd
}

func transferCmd() *cobra.Command {
	var fromName, toName string
	var parkAlt, launchEnd, launchStep, durMin, durMax, durStep, acceptable, midBudget float64
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Plan an interplanetary transfer from a circular parking orbit",
		RunE: func(cmd *cobra.Command, args []string) error {
			bodies, err := loadBodies()
			if err != nil {
				return err
			}
			from, err := astro.BodyFromMap(bodies, fromName)
			if err != nil {
				return err
			}
			to, err := astro.BodyFromMap(bodies, toName)
			if err != nil {
				return err
			}
			if from.Primary == nil || from.Primary != to.Primary {
				return fmt.Errorf("%s and %s do not share a primary", fromName, toName)
			}
			primary := from.Primary

			// Parking spacecraft on a circular equatorial orbit at the
			// given altitude, in the primary's frame.
			rp := from.Radius + parkAlt*1e3
			v := math.Sqrt(from.GM / rp)
			park := astro.NewObjectState(from.State.Time, []float64{rp, 0, 0}, []float64{0, v, 0}).InFrameOf(from.State)

			ks := astro.NewUniversalKeplerSolver()
			gs := astro.NewUniversalGaussSolver()
			pt, err := astro.PlanPlanetaryTransfer(context.Background(), ks, gs, astro.TransferRequest{
				Primary:      primary,
				From:         from,
				To:           to,
				Parking:      park,
				LaunchStart:  0,
				LaunchEnd:    launchEnd * 86400,
				LaunchStep:   launchStep * 86400,
				DurationMin:  durMin * 86400,
				DurationMax:  durMax * 86400,
				DurationStep: durStep * 86400,
				AcceptableDV: acceptable,
				MidcourseDV:  midBudget,
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "hyperbolic excess\t%.1f m/s\n", norm3(pt.Heliocentric.DeltaV))
			fmt.Fprintf(w, "injection\t%+.2f days from epoch, Δv %.1f m/s\n", pt.InjectionTime/86400, pt.InjectionDV)
			fmt.Fprintf(w, "ejection angle\t%.2f°\n", astro.Rad2deg(pt.EjectionAngle))
			fmt.Fprintf(w, "SOI exit\t%+.2f days from epoch\n", pt.SOIExitTime/86400)
			fmt.Fprintf(w, "total plan Δv\t%.1f m/s over %d burns\n", pt.Plan.TotalDeltaV(), len(pt.Plan))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&fromName, "from", "Earth", "departure planet")
	cmd.Flags().StringVar(&toName, "to", "Mars", "target planet")
	cmd.Flags().Float64Var(&parkAlt, "park-alt", 300, "parking orbit altitude, km")
	cmd.Flags().Float64Var(&launchEnd, "launch-window", 780, "launch window length, days")
	cmd.Flags().Float64Var(&launchStep, "launch-step", 10, "launch grid step, days")
	cmd.Flags().Float64Var(&durMin, "dur-min", 120, "minimum transfer duration, days")
	cmd.Flags().Float64Var(&durMax, "dur-max", 400, "maximum transfer duration, days")
	cmd.Flags().Float64Var(&durStep, "dur-step", 10, "duration grid step, days")
	cmd.Flags().Float64Var(&acceptable, "acceptable-dv", 0, "stop early below this Δv, m/s")
	cmd.Flags().Float64Var(&midBudget, "midcourse-budget", 0, "reject plans whose correction exceeds this Δv, m/s (0 = no limit)")
	return cmd
}

func wayName(short bool) string {
	if short {
		return "short way"
	}
	return "long way"
}

func norm3(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
