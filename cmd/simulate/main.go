// Package main - simulate
// Headless balance simulator. Runs the economy core in-process with a
// greedy bot player and prints a progression report, so pacing changes
// can be evaluated without a frontend or a database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
	"github.com/sikidle/server/internal/engine"
	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/platform/config"
	"github.com/sikidle/server/internal/platform/logger"
)

// SimConfig for the simulator
type SimConfig struct {
	Hours          float64
	StepSeconds    float64
	ClicksPerStep  int
	AllowPrestige  bool
	ReportInterval float64 // simulated hours between progress lines
}

// SimStats tracks what the bot did.
type SimStats struct {
	Clicks     int64
	Purchases  int64
	Prestiges  int64
	Stagnation int64 // steps flagged as stagnating
}

func main() {
	hours := flag.Float64("hours", 8, "Simulated play time in hours")
	step := flag.Float64("step", 10, "Simulation step in seconds")
	clicks := flag.Int("clicks", 2, "Manual clicks per step")
	allowPrestige := flag.Bool("prestige", true, "Let the bot prestige when eligible")
	report := flag.Float64("report", 1, "Hours between progress reports")
	flag.Parse()

	simCfg := SimConfig{
		Hours:          *hours,
		StepSeconds:    *step,
		ClicksPerStep:  *clicks,
		AllowPrestige:  *allowPrestige,
		ReportInterval: *report,
	}

	fmt.Println("=========================================")
	fmt.Println("🎮 SIKIDLE BALANCE SIMULATOR")
	fmt.Println("=========================================")
	fmt.Printf("Simulated time: %.1fh  step: %.0fs  clicks/step: %d  prestige: %v\n",
		simCfg.Hours, simCfg.StepSeconds, simCfg.ClicksPerStep, simCfg.AllowPrestige)
	fmt.Println("=========================================")

	stats := runSimulation(simCfg)
	printResults(stats, simCfg)
}

func runSimulation(simCfg SimConfig) *SimStats {
	stats := &SimStats{}

	cfg := config.DefaultConfig()
	appLogger := logger.NewLogger()
	eventLog := events.NewLog(nil)
	session := engine.NewSession(cfg, appLogger, eventLog)

	catalogue := generator.DefaultCatalogue()

	totalSeconds := simCfg.Hours * 3600
	reportEvery := simCfg.ReportInterval * 3600
	nextReport := reportEvery

	start := time.Now()
	for elapsed := 0.0; elapsed < totalSeconds; elapsed += simCfg.StepSeconds {
		session.Tick(simCfg.StepSeconds)

		for i := 0; i < simCfg.ClicksPerStep; i++ {
			session.Click()
			stats.Clicks++
		}

		// Greedy strategy: keep buying the most production per coin
		// until nothing is affordable.
		for {
			if t, ok := bestAffordable(session, catalogue); ok {
				if session.PurchaseGenerator(t) {
					stats.Purchases++
					continue
				}
			}
			break
		}

		if simCfg.AllowPrestige {
			if res := session.PrestigePreview(prestige.TierSoft); res.Eligible {
				if committed := session.PerformPrestige(prestige.TierSoft); committed.Eligible {
					stats.Prestiges++
					fmt.Printf("⭐ [%s] Prestiged: +%d crystals (total %d)\n",
						fmtSimTime(elapsed), committed.CrystalsGained, committed.CrystalsTotal)
				}
			}
		}

		if session.Advisory().IsStagnating {
			stats.Stagnation++
		}

		if elapsed >= nextReport {
			nextReport += reportEvery
			printProgress(elapsed, session)
		}
	}

	fmt.Printf("\n⏱  Simulated %.1fh in %v real time\n", simCfg.Hours, time.Since(start).Round(time.Millisecond))
	printProgress(totalSeconds, session)
	return stats
}

// bestAffordable picks the affordable generator with the highest base
// production per coin of cost, cheapest on ties.
func bestAffordable(session *engine.Session, catalogue *generator.Catalogue) (generator.Type, bool) {
	var best generator.Type
	bestEff := -1.0
	bestCost := 0.0
	found := false

	for _, gv := range session.View().Generators {
		if !gv.CanAfford || !gv.Unlocked || gv.Cost <= 0 {
			continue
		}
		info, ok := catalogue.Info(gv.Type)
		if !ok {
			continue
		}
		eff := info.BaseRate / gv.Cost
		if eff > bestEff || (eff == bestEff && gv.Cost < bestCost) {
			best = gv.Type
			bestEff = eff
			bestCost = gv.Cost
			found = true
		}
	}
	return best, found
}

func printProgress(elapsed float64, session *engine.Session) {
	view := session.View()

	total := 0
	for _, gv := range view.Generators {
		total += gv.Count
	}

	fmt.Printf("📊 [%s] coins=%s  lvl=%d  buildings=%d  income×%.2f  crystals=%s\n",
		fmtSimTime(elapsed),
		humanize.CommafWithDigits(view.Balances[resource.Coins], 0),
		view.PlayerLevel,
		total,
		view.Prestige.Income,
		humanize.Comma(int64(view.Balances[resource.Crystals])),
	)
	if view.Advisory.IsStagnating {
		fmt.Printf("   ⚠️  stagnating: %s\n", view.Advisory.Recommendation)
	}
}

func fmtSimTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func printResults(stats *SimStats, simCfg SimConfig) {
	fmt.Println("\n=========================================")
	fmt.Println("📊 SIMULATION RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Clicks:           %d\n", stats.Clicks)
	fmt.Printf("Purchases:        %d\n", stats.Purchases)
	fmt.Printf("Prestiges:        %d\n", stats.Prestiges)
	fmt.Printf("Stagnant steps:   %d\n", stats.Stagnation)
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"clicks":         stats.Clicks,
		"purchases":      stats.Purchases,
		"prestiges":      stats.Prestiges,
		"stagnant_steps": stats.Stagnation,
		"config": map[string]interface{}{
			"hours":       simCfg.Hours,
			"step_sec":    simCfg.StepSeconds,
			"clicks_step": simCfg.ClicksPerStep,
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("simulation_results.json", jsonData, 0644)
	fmt.Println("\n📁 Results saved to simulation_results.json")
}
