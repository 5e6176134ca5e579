package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"vault_dashboard/internal/client"
	"vault_dashboard/internal/config"
	"vault_dashboard/internal/entity"
	"vault_dashboard/internal/pkg/format"
	"vault_dashboard/internal/service"
	"vault_dashboard/pkg/metrics"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const reportWidth = 80

func main() {
	vaultFlag := flag.String("vault", "", "vault address to analyze")
	networkFlag := flag.String("network", "mainnet", "network: mainnet or testnet")
	periodFlag := flag.String("period", "all", "history period: all, 7d, 30d, 90d, 1y")
	intervalFlag := flag.String("interval", "daily", "history interval: hourly, daily, weekly, monthly")
	flag.Parse()

	_ = godotenv.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	if *vaultFlag == "" {
		fmt.Fprintln(os.Stderr, entity.ErrEmptyVaultAddress.Error())
		flag.Usage()
		os.Exit(2)
	}
	network, err := entity.ParseNetwork(*networkFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	metrics.MustRegisterMetrics()

	apiClient := client.NewVaultAPIClient(cfg.VaultAPI.BaseURL, cfg.VaultAPI.APIKey, zapLogger)
	svc := service.NewVaultService(apiClient, zapLogger)

	overview, err := svc.AnalyzeVault(context.Background(), *vaultFlag, network)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze failed: %v\n", err)
		os.Exit(1)
	}

	// When the overview has no history yet (or to honor explicit flags),
	// pull history with the requested period/interval.
	history := overview.History
	if *periodFlag != string(entity.PeriodAll) || *intervalFlag != string(entity.IntervalDaily) {
		result, err := svc.FetchHistory(context.Background(), *vaultFlag, network, entity.HistoryParams{
			Period:   entity.HistoryPeriod(*periodFlag),
			Interval: entity.HistoryInterval(*intervalFlag),
		})
		if err != nil {
			history = entity.OutcomeErr[entity.HistoryResult](err)
		} else {
			history = entity.Outcome(*result)
		}
	}

	printHeader(fmt.Sprintf("Vault Report: %s (%s)", *vaultFlag, network))
	printInfoSection(overview.Info)
	printAPYSection(overview.APY)
	printHistorySection(history)
	printFooter("Report complete")
}

func printHeader(title string) {
	fmt.Println("\n" + strings.Repeat("=", reportWidth))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", reportWidth))
}

func printFooter(message string) {
	fmt.Println("\n" + strings.Repeat("=", reportWidth))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", reportWidth) + "\n")
}

func printSection(name string) {
	fmt.Println("\n" + name)
	fmt.Println(strings.Repeat("-", reportWidth))
}

func printInfoSection(info entity.FetchOutcome[entity.VaultInfo]) {
	printSection("Vault")
	if !info.OK() {
		fmt.Printf("  unavailable: %s\n", info.Error)
		return
	}
	v := info.Data
	fmt.Printf("  Name:          %s (%s)\n", v.Name, v.Symbol)
	fmt.Printf("  APY:           %s\n", format.FormatPercentage(&v.APY))
	vaultFee := v.Fees.VaultFeeBps / 100
	protocolFee := v.Fees.ProtocolFeeBps / 100
	fmt.Printf("  Fees:          vault %s, protocol %s\n",
		format.FormatPercentage(&vaultFee), format.FormatPercentage(&protocolFee))
	fmt.Printf("  Manager:       %s\n", v.Roles.Manager)
	fmt.Printf("  Fee receiver:  %s\n", v.Roles.FeeReceiver)

	for _, asset := range v.Assets {
		fmt.Printf("  Asset %s (%s)\n", asset.Symbol, asset.Address)
		for i, strategy := range asset.Strategies {
			prefix := "│  "
			if i == len(asset.Strategies)-1 {
				prefix = "└  "
			}
			status := "active"
			if strategy.Paused {
				status = "paused"
			}
			fmt.Printf("    %s%s [%s]\n", prefix, strategy.Name, status)
		}
	}
}

func printAPYSection(apy entity.FetchOutcome[entity.VaultAPY]) {
	printSection("APY")
	if !apy.OK() {
		fmt.Printf("  unavailable: %s\n", apy.Error)
		return
	}
	fmt.Printf("  Current APY:   %s\n", format.FormatPercentage(&apy.Data.APY))
}

func printHistorySection(history entity.FetchOutcome[entity.HistoryResult]) {
	printSection("History")
	if history.Data == nil {
		fmt.Printf("  unavailable: %s\n", history.Error)
		return
	}
	h := history.Data
	if history.Error != "" {
		fmt.Printf("  (stale: last refresh failed: %s)\n", history.Error)
	}

	if state := h.CurrentState; state != nil {
		fmt.Printf("  TVL:           %s (%s)\n",
			format.FormatStroopsWithCommas(state.TotalManagedFunds),
			format.FormatCompact(format.StroopsToDecimal(state.TotalManagedFunds)))
		fmt.Printf("  Supply:        %s\n", format.FormatStroopsWithCommas(state.TotalSupply))
		fmt.Printf("  PPS:           %s\n", format.FormatDecimal(format.ParseFloatOrZero(state.PricePerShare)))
	}

	if m := h.Metrics; m != nil {
		printMetricsRow("7d", m.Period7D)
		printMetricsRow("30d", m.Period30D)
		printMetricsRow("all", m.AllTime)
		if m.UniqueDepositors != nil {
			fmt.Printf("  Depositors:    %s\n", format.FormatWithCommas(float64(*m.UniqueDepositors)))
		}
	}

	points := format.ToChartSeries(h)
	fmt.Printf("  Samples:       %d\n", len(points))
	if len(points) > 0 {
		first, last := points[0], points[len(points)-1]
		fmt.Printf("  Range:         %s .. %s\n", first.Date, last.Date)
	}
}

func printMetricsRow(label string, m *entity.PeriodMetrics) {
	if m == nil {
		return
	}
	fmt.Printf("  %-4s APY %s, return %s, net deposits %s\n",
		label,
		format.FormatPercentage(m.APY),
		format.FormatPercentage(m.TotalReturn),
		formatAmountPtr(m.NetDeposits))
}

func formatAmountPtr(v *float64) string {
	if v == nil {
		return "0"
	}
	return format.FormatWithCommas(*v)
}
