// Command estimate-cost prints the model assignment and projected spend for
// every keyword and style pair, without calling any provider.
//
// Usage:
//
//	go run ./cmd/estimate-cost -keywords "cat mom,coffee quotes" -styles minimalist,typography -budget cheap
//	go run ./cmd/estimate-cost -catalog config/model_catalog.json -json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/logging"
)

var (
	keywordsFlag = flag.String("keywords", "", "Comma-separated keywords (required)")
	stylesFlag   = flag.String("styles", "minimalist,vintage,typography,watercolor,line_art", "Comma-separated styles")
	budgetFlag   = flag.String("budget", "balanced", "Budget mode: cheap, balanced or quality")
	catalogFlag  = flag.String("catalog", "", "Catalog overrides file (same format as the S3 object)")
	testingFlag  = flag.Bool("testing", false, "Use testing mode (cheapest model everywhere)")
	jsonFlag     = flag.Bool("json", false, "Print the estimate as JSON")
)

func main() {
	flag.Parse()
	logger := logging.SetDefault()

	keywords := splitList(*keywordsFlag)
	styles := splitList(*stylesFlag)
	if len(keywords) == 0 || len(styles) == 0 {
		fmt.Fprintln(os.Stderr, "estimate-cost: -keywords and -styles must not be empty")
		flag.Usage()
		os.Exit(2)
	}

	budget, err := aimodel.ParseBudgetMode(*budgetFlag)
	if err != nil {
		fail(err)
	}

	catalog := aimodel.DefaultCatalog()
	if *catalogFlag != "" {
		catalog, err = loadCatalogFile(*catalogFlag)
		if err != nil {
			fail(err)
		}
	}

	selector := aimodel.NewSelector(catalog, aimodel.WithTestingMode(*testingFlag), aimodel.WithLogger(logger))
	est, err := selector.EstimateBatchCost(keywords, styles, budget)
	if err != nil {
		fail(err)
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(est); err != nil {
			fail(err)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tSTYLE\tMODEL\tCOST\tSECONDS\tRULE")
	for _, p := range est.Breakdown {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.3f\t%d\t%s\n", p.Keyword, p.Style, p.ModelKey, p.Cost, p.EstimatedTimeSeconds, p.Rule)
	}
	_ = w.Flush()

	fmt.Printf("\n%d images, $%.2f total, $%.4f average, ~%d min\n",
		est.TotalImages, est.TotalCost, est.AvgCost, est.TotalTimeSeconds/60)
	if est.Cheapest != nil && est.MostExpensive != nil {
		fmt.Printf("cheapest: %s/%s on %s ($%.3f), most expensive: %s/%s on %s ($%.3f)\n",
			est.Cheapest.Keyword, est.Cheapest.Style, est.Cheapest.ModelKey, est.Cheapest.Cost,
			est.MostExpensive.Keyword, est.MostExpensive.Style, est.MostExpensive.ModelKey, est.MostExpensive.Cost)
	}
}

func loadCatalogFile(path string) (*aimodel.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var file aimodel.CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return file.Apply(aimodel.DefaultModelSpecs(), "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "estimate-cost: %v\n", err)
	os.Exit(1)
}
