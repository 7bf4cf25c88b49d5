package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/SiriusScan/redis-tools/internal/commands"
)

// modes are the operation flags in the order they are reported in usage.
var modes = []string{"copy", "copy_keys", "delete", "statis_keys"}

var errMultipleModes = errors.New("only one of --copy, --copy_keys, --delete, --statis_keys may be given")

type options struct {
	uri        string
	envFile    string
	reportPath string
	mode       string
	values     []string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	opt := options{}
	fs := flag.NewFlagSet("redis-tools", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: redis-tools [-uri address] [-env file] [-report file] -<operation> [values...]\n\n")
		fmt.Fprintf(output, "Operations: %s\n\n", strings.Join(commands.Names(), ", "))
		fs.PrintDefaults()
	}
	fs.StringVar(&opt.uri, "uri", "", "default store address redis://host[:port][/db]; overrides STORE_URI")
	fs.StringVar(&opt.envFile, "env", "", "load environment variables from this file")
	fs.StringVar(&opt.reportPath, "report", "", "write the run report as JSON to this file")

	selected := make(map[string]*bool, len(modes))
	selected["copy"] = fs.Bool("copy", false, "copy [src] [dst]: copy one key, src and dst are keys or addresses")
	selected["copy_keys"] = fs.Bool("copy_keys", false, "copy_keys [pattern] [dst]: copy every key matching pattern")
	selected["delete"] = fs.Bool("delete", false, "delete key...: lazily delete keys on the default store")
	selected["statis_keys"] = fs.Bool("statis_keys", false, "list keys above the element threshold as \"key count\"")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	for _, name := range modes {
		if !*selected[name] {
			continue
		}
		if opt.mode != "" {
			return options{}, errMultipleModes
		}
		opt.mode = name
	}
	// Parsing stops at the first value, so flags written after it would be
	// taken as values.
	for _, v := range fs.Args() {
		name, ok := flagName(v)
		if !ok || fs.Lookup(name) == nil {
			continue
		}
		if _, isMode := selected[name]; isMode {
			return options{}, errMultipleModes
		}
		return options{}, fmt.Errorf("flag -%s must be given before the operation flag", name)
	}
	if opt.mode == "" && fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected values without an operation flag: %s", strings.Join(fs.Args(), " "))
	}
	opt.values = fs.Args()
	return opt, nil
}

// flagName returns the name of a "-name", "--name" or "--name=value" argument.
func flagName(v string) (string, bool) {
	name := strings.TrimLeft(v, "-")
	if name == v || name == "" {
		return "", false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name, true
}
