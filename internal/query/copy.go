package query

import (
	"fmt"
	"strings"

	"frame/internal/source"
)

// Compressions lists the accepted --compression values
var Compressions = []string{"none", "snappy", "gzip", "zstd"}

// Copy writes the result of Query to a file with COPY ... TO
type Copy struct {
	Query       string
	Dest        string
	Format      source.Format
	Compression string
	PartitionBy []string
}

// FormatFor picks the output format: the explicit one if set, otherwise the
// one named by the destination file, otherwise parquet
func FormatFor(explicit, dest string) (source.Format, error) {
	if explicit != "" {
		return source.ParseFormat(explicit)
	}
	if f := source.DetectFormat(dest); f != source.FormatNone {
		return f, nil
	}
	return source.FormatParquet, nil
}

// Validate checks the option combination before anything runs
func (c Copy) Validate() error {
	if c.Dest == "" {
		return fmt.Errorf("copy destination is required")
	}
	if c.Compression == "" {
		return nil
	}
	if !contains(Compressions, c.Compression) {
		return fmt.Errorf("unsupported compression %q: use one of %s", c.Compression, strings.Join(Compressions, ", "))
	}
	if c.Compression == "snappy" && c.Format != source.FormatParquet {
		return fmt.Errorf("snappy compression is only available for parquet output")
	}
	return nil
}

// String renders COPY (query) TO 'dest' (options)
func (c Copy) String() string {
	var opts []string
	switch c.Format {
	case source.FormatCSV:
		opts = append(opts, "FORMAT CSV", "HEADER true")
	case source.FormatJSON:
		opts = append(opts, "FORMAT JSON", "ARRAY true")
	case source.FormatNDJSON:
		opts = append(opts, "FORMAT JSON")
	default:
		opts = append(opts, "FORMAT PARQUET")
	}

	switch c.Compression {
	case "":
	case "none":
		opts = append(opts, "COMPRESSION 'uncompressed'")
	default:
		opts = append(opts, fmt.Sprintf("COMPRESSION '%s'", c.Compression))
	}

	if len(c.PartitionBy) > 0 {
		opts = append(opts, fmt.Sprintf("PARTITION_BY (%s)", strings.Join(c.PartitionBy, ", ")))
	}

	return fmt.Sprintf("COPY (%s) TO %s (%s)", c.Query, source.QuoteLiteral(c.Dest), strings.Join(opts, ", "))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
