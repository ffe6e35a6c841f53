package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// columnList is a repeatable flag whose values are split on whitespace.
// It remembers whether it was given at all, so --count "" (present, empty)
// differs from leaving --count out.
type columnList struct {
	values []string
	set    bool
}

var _ pflag.Value = (*columnList)(nil)

func (c *columnList) String() string {
	return strings.Join(c.values, " ")
}

func (c *columnList) Set(v string) error {
	c.set = true
	c.values = append(c.values, strings.Fields(v)...)
	return nil
}

func (c *columnList) Type() string {
	return "columns"
}


// ExpandColumnFlags lets a columns flag take every argument up to the next
// flag: "--sum a b --avg c" becomes "--sum a --sum b --avg c". pflag hands a
// flag a single value, so without this "b" would parse as a positional.
func ExpandColumnFlags(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == root {
		return args
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}

		f := lookupFlag(cmd, arg)
		if f == nil || strings.Contains(arg, "=") {
			out = append(out, arg)
			continue
		}

		if f.Value.Type() != (&columnList{}).Type() {
			out = append(out, arg)
			// Keep the value of other flags, even one like "-1"
			if f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
			continue
		}

		j := i + 1
		for ; j < len(args) && !isFlagArg(args[j]); j++ {
			out = append(out, arg, args[j])
		}
		if j == i+1 {
			// No value: leave the error to pflag
			out = append(out, arg)
		}
		i = j - 1
	}
	return out
}

// lookupFlag finds the flag named by a "--name" or "-n" argument among the
// local and inherited flags of cmd
func lookupFlag(cmd *cobra.Command, arg string) *pflag.Flag {
	if !isFlagArg(arg) {
		return nil
	}
	name, _, _ := strings.Cut(arg, "=")

	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
		switch {
		case strings.HasPrefix(name, "--"):
			if f := fs.Lookup(name[2:]); f != nil {
				return f
			}
		case len(name) == 2:
			if f := fs.ShorthandLookup(name[1:]); f != nil {
				return f
			}
		}
	}
	return nil
}

// isFlagArg reports whether arg is a flag or the "--" terminator
func isFlagArg(arg string) bool {
	return strings.HasPrefix(arg, "-") && arg != "-"
}
