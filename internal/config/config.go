package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/qarray/internal/exit"
	"github.com/jacoelho/qarray/loader"
	"github.com/jacoelho/qarray/operator"
)

const (
	// DefaultTimeout is the default timeout for URL sources.
	DefaultTimeout = 30 * time.Second

	// Stdin is the source name that reads the document from standard input.
	Stdin = "-"
)

var (
	ErrNoArguments         = errors.New("no arguments provided")
	ErrTooManySources      = errors.New("only one source can be queried")
	ErrInvalidClause       = errors.New("condition must be in format \"path operator [value]\"")
	ErrMissingValue        = errors.New("operator requires a value")
	ErrInvalidSort         = errors.New("sort must be in format column[:asc|:desc]")
	ErrInvalidOutputFormat = errors.New("output format must be json or yaml")
	ErrNegativeOffset      = errors.New("offset cannot be negative")
	ErrNegativeLimit       = errors.New("limit cannot be negative")
)

// Clause is one -where or -or-where condition.
type Clause struct {
	Path  string
	Token string
	Value any
	Or    bool
}

// Config represents the complete configuration for the qarray tool.
type Config struct {
	Source      string
	InputFormat loader.Format

	// Query shape
	From      string
	Delimiter string
	Clauses   []Clause
	Select    []string
	Except    []string
	SortBy    string
	SortDesc  bool
	Sorted    bool
	Offset    int
	Limit     int
	HasLimit  bool
	Search    string

	// Output
	Count        bool
	OutputFormat string
	Debug        bool

	// HTTP client configuration
	Insecure       bool
	CACertFile     string
	RequestTimeout time.Duration
	RateLimit      float64 // Fetches per second (0 = unlimited)
}

// FromStdin reports whether the document comes from standard input.
func (c *Config) FromStdin() bool {
	return c.Source == "" || c.Source == Stdin
}

// TLSConfig returns a TLS configuration based on the config settings.
func (c *Config) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.Insecure,
	}

	if c.CACertFile != "" {
		caCertPool, err := x509.SystemCertPool()
		if err != nil {
			caCertPool = x509.NewCertPool()
		}

		caCert, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", c.CACertFile, err)
		}

		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", c.CACertFile)
		}

		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// HTTPClient creates an HTTP client configured with the settings from this Config.
func (c *Config) HTTPClient() (*http.Client, error) {
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
	}

	return &http.Client{
		Timeout: c.RequestTimeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Offset < 0 {
		return ErrNegativeOffset
	}
	if c.HasLimit && c.Limit < 0 {
		return ErrNegativeLimit
	}

	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w, got: %s", ErrInvalidOutputFormat, c.OutputFormat)
	}

	for _, clause := range c.Clauses {
		if _, err := operator.Resolve(clause.Token); err != nil {
			return fmt.Errorf("condition on %q: %w", clause.Path, err)
		}
	}

	if c.CACertFile != "" {
		if _, err := os.Stat(c.CACertFile); err != nil {
			return fmt.Errorf("CA certificate file %s not found: %w", c.CACertFile, err)
		}
	}

	return nil
}

// clausesFlag implements flag.Value for -where and -or-where. Both flags
// append to the same list so their order on the command line is kept.
type clausesFlag struct {
	clauses *[]Clause
	or      bool
}

func (c clausesFlag) String() string {
	if c.clauses == nil {
		return ""
	}
	var parts []string
	for _, clause := range *c.clauses {
		if clause.Or == c.or {
			parts = append(parts, fmt.Sprintf("%s %s %v", clause.Path, clause.Token, clause.Value))
		}
	}
	return strings.Join(parts, ",")
}

func (c clausesFlag) Set(value string) error {
	clause, err := ParseClause(value)
	if err != nil {
		return err
	}
	clause.Or = c.or
	*c.clauses = append(*c.clauses, clause)
	return nil
}

// listFlag collects comma separated names across repeated flags.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for name := range strings.SplitSeq(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*l = append(*l, name)
		}
	}
	return nil
}

// ParseClause reads "path operator value". The value is decoded as a YAML
// scalar or flow collection, so 30 is a number and [a, b] a list; anything
// that does not decode, or decodes to a mapping, stays a string. Presence
// operators take no value.
func ParseClause(raw string) (Clause, error) {
	path, rest, _ := strings.Cut(strings.TrimSpace(raw), " ")
	token, value, hasValue := strings.Cut(strings.TrimSpace(rest), " ")
	value = strings.TrimSpace(value)

	if path == "" || token == "" {
		return Clause{}, fmt.Errorf("%w, got: %s", ErrInvalidClause, raw)
	}

	clause := Clause{Path: path, Token: token}
	if !hasValue || value == "" {
		op, err := operator.Resolve(token)
		if err != nil {
			return Clause{}, err
		}
		if builtin, ok := op.(operator.Builtin); !ok || !builtin.ObservesMissing() {
			return Clause{}, fmt.Errorf("%w: %s", ErrMissingValue, token)
		}
		return clause, nil
	}

	clause.Value = parseValue(value)
	return clause, nil
}

func parseValue(raw string) any {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}

	switch value.(type) {
	case nil:
		if raw == "null" || raw == "~" {
			return nil
		}
		return raw
	case map[string]any, time.Time:
		return raw
	default:
		return value
	}
}

func parseSort(raw string) (column string, desc bool, err error) {
	column, order, _ := strings.Cut(raw, ":")
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return "", false, fmt.Errorf("%w, got: %s", ErrInvalidSort, raw)
	}
	return strings.TrimSpace(column), desc, nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Usage and flag errors are reported through exit.Result.
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		clauses []Clause
		selects listFlag
		except  listFlag

		from         = fs.String("from", "", "Path of the node to query")
		delimiter    = fs.String("delimiter", ".", "Path segment delimiter")
		sortBy       = fs.String("sort", "", "Sort by column[:asc|:desc]; an empty column sorts scalar values")
		offset       = fs.Int("offset", 0, "Skip the first N results")
		limit        = fs.Int("limit", 0, "Return at most N results")
		search       = fs.String("search", "", "JSONPath expression applied to the result")
		count        = fs.Bool("count", false, "Print the number of results instead of the results")
		inputFormat  = fs.String("input", "", "Input format: json or yaml (detected when empty)")
		outputFormat = fs.String("format", "json", "Output format: json or yaml")
		debug        = fs.Bool("debug", false, "Log query and fetch details to stderr")
		insecure     = fs.Bool("insecure", false, "Skip TLS certificate verification")
		caCertFile   = fs.String("cacert", "", "Path to CA certificate file for TLS verification")
		timeout      = fs.Duration("timeout", DefaultTimeout, "HTTP request timeout")
		rateLimit    = fs.Float64("rate-limit", 0, "Rate limit in fetches per second (0 for unlimited)")
	)

	fs.Var(clausesFlag{clauses: &clauses}, "where", "Condition \"path operator [value]\" joined with AND (can be used multiple times)")
	fs.Var(clausesFlag{clauses: &clauses, or: true}, "or-where", "Condition that starts a new OR group (can be used multiple times)")
	fs.Var(&selects, "select", "Comma separated columns to keep")
	fs.Var(&except, "except", "Comma separated columns to drop")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	sources := fs.Args()
	if len(sources) > 1 {
		return nil, exit.Errorf("Error: %v, got: %s\n\n%s", ErrTooManySources, strings.Join(sources, " "), Usage())
	}

	format, err := loader.ParseFormat(*inputFormat)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	config := &Config{
		InputFormat:    format,
		From:           *from,
		Delimiter:      *delimiter,
		Clauses:        clauses,
		Select:         selects,
		Except:         except,
		Offset:         *offset,
		Limit:          *limit,
		Search:         *search,
		Count:          *count,
		OutputFormat:   strings.ToLower(*outputFormat),
		Debug:          *debug,
		Insecure:       *insecure,
		CACertFile:     *caCertFile,
		RequestTimeout: *timeout,
		RateLimit:      *rateLimit,
	}
	if len(sources) == 1 {
		config.Source = sources[0]
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "limit":
			config.HasLimit = true
		case "sort":
			config.Sorted = true
		}
	})

	if config.Sorted {
		config.SortBy, config.SortDesc, err = parseSort(*sortBy)
		if err != nil {
			return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
		}
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `qarray - query JSON and YAML documents

Usage: qarray [options] [source]

The source is a file path, an http(s) URL or the document itself.
Without a source, or with -, the document is read from stdin.

Options:
  --from PATH             Path of the node to query (e.g. data.users)
  --where "P OP [V]"      Condition joined with AND (can be used multiple times)
  --or-where "P OP [V]"   Condition that starts a new OR group (can be used multiple times)
  --select A,B            Columns to keep
  --except A,B            Columns to drop
  --sort COL[:desc]       Sort by column, ":desc" alone sorts scalar values
  --offset N              Skip the first N results
  --limit N               Return at most N results
  --search EXPR           JSONPath expression applied to the result
  --count                 Print the number of results
  --delimiter SEP         Path segment delimiter (default: .)
  --input FORMAT          Input format: json or yaml (default: detected)
  --format FORMAT         Output format: json or yaml (default: json)
  --debug                 Log query and fetch details to stderr
  --insecure              Skip TLS certificate verification
  --cacert FILE           Path to CA certificate file for TLS verification
  --timeout DURATION      HTTP request timeout (default: 30s)
  --rate-limit N          Rate limit in fetches per second (0 for unlimited)
  -h, --help              Show this help message

Examples:
  qarray --from users --where "age > 30" users.json
  qarray --from users --where "city = Lisbon" --or-where "city = Porto" users.yaml
  qarray --from users --where "email notexists" --select name --format yaml users.json
  qarray --from users --sort age:desc --limit 3 https://example.com/users.json
  curl -s https://example.com/users.json | qarray --from users --count`
}
