// Command fxinfo prints the parameter schema of audio effect units.
//
// Usage:
//
//	fxinfo [flags] [effect-type ...]
//
// Without arguments it prints the schema of all registered effect types.
//
// Examples:
//
//	fxinfo eq distortion
//	fxinfo -rate 44100 reverb
//	fxinfo -list
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mixforge/audiofx/dsp/effectchain"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	channels := flag.Int("channels", 2, "channel count")
	list := flag.Bool("list", false, "list available effect types")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxinfo [flags] [effect-type ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the parameter schema of audio effect units.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, prints the schema of all types.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fxinfo eq distortion\n")
		fmt.Fprintf(os.Stderr, "  fxinfo -rate 44100 reverb\n")
		fmt.Fprintf(os.Stderr, "  fxinfo -list\n")
	}
	flag.Parse()

	registry := effectchain.DefaultRegistry()

	if *list {
		for _, typ := range registry.Types() {
			fmt.Println(typ)
		}
		return
	}

	types := flag.Args()
	if len(types) == 0 {
		types = registry.Types()
	}

	if err := printSchemas(registry, types, *rate, *channels); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printSchemas(registry *effectchain.Registry, types []string, rate float64, channels int) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Effect\tParameter\tDefault\tMin\tMax\n")
	fmt.Fprintf(tw, "------\t---------\t-------\t---\t---\n")

	for _, typ := range types {
		typ = strings.ToLower(strings.TrimSpace(typ))

		factory := registry.Lookup(typ)
		if factory == nil {
			fmt.Fprintf(os.Stderr, "warning: unknown effect %q (use -list to see available)\n", typ)
			continue
		}

		proc, err := factory(rate, channels)
		if err != nil {
			return fmt.Errorf("%s: %w", typ, err)
		}

		params := proc.Params()
		if len(params) == 0 {
			fmt.Fprintf(tw, "%s\t(none)\t\t\t\n", typ)
			continue
		}

		for _, p := range params {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\n", typ, p.Name, p.Default, p.Min, p.Max)
		}
	}

	return tw.Flush()
}
