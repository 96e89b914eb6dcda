// uatypes converts OPC-UA values between the binary and JSON encodings and
// inspects NodeSet2 type-definition documents.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/reoring/uatypes"
	"github.com/reoring/uatypes/config"
	"github.com/reoring/uatypes/nodeset"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if e, ok := uatypes.AsError(err); ok {
			fmt.Fprintf(os.Stderr, "status: %s\n", e.StatusCode())
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, `uatypes: OPC-UA type encoding tool

Usage:
  uatypes decode  [--kind K] [--from binary|json] [--hex] [FILE]
  uatypes encode  [--kind K] [--hex] [FILE]
  uatypes nodeset [--lenient] FILE...
  uatypes --version

Kinds: variant (default), extension-object, data-value.
Common flags: --config PATH (or $UATYPES_CONFIG), --log-level LEVEL.`)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}
	switch args[0] {
	case "--version", "version":
		fmt.Fprintln(stdout, "uatypes", version)
		return nil
	case "-h", "--help", "help":
		usage(stdout)
		return nil
	case "decode":
		return decodeCmd(args[1:], stdin, stdout, stderr)
	case "encode":
		return encodeCmd(args[1:], stdin, stdout, stderr)
	case "nodeset":
		return nodesetCmd(args[1:], stdout, stderr)
	}
	usage(stderr)
	return errUsage
}

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	logLevel   string
}

func (c *common) add(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "configuration file (.yaml or .jsonc); defaults to $"+config.EnvVar)
	fs.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func (c *common) logger(stderr io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})), nil
}

func (c *common) context(stderr io.Writer) (*uatypes.Context, *slog.Logger, error) {
	logger, err := c.logger(stderr)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := cfg.Build(logger)
	if err != nil {
		return nil, nil, err
	}
	return ctx, logger, nil
}

func kindType(kind string) (uatypes.TypeID, error) {
	switch kind {
	case "variant":
		return uatypes.TypeVariant, nil
	case "extension-object":
		return uatypes.TypeExtensionObject, nil
	case "data-value":
		return uatypes.TypeDataValue, nil
	}
	return 0, fmt.Errorf("--kind: unknown kind %q", kind)
}

// readInput reads stdin or the single file argument, failing once more
// than limit bytes arrive.
func readInput(fs *pflag.FlagSet, stdin io.Reader, limit int) ([]byte, error) {
	var r io.Reader
	switch fs.NArg() {
	case 0:
		r = stdin
	case 1:
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	default:
		return nil, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > limit {
		return nil, &uatypes.Error{Code: uatypes.CodeLimitExceeded, Offset: int64(limit), Message: fmt.Sprintf("input exceeds %d bytes", limit)}
	}
	return data, nil
}

func parse(fs *pflag.FlagSet, args []string, stdout io.Writer) (bool, error) {
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func decodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c common
	var kind, from string
	var isHex bool
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	c.add(fs)
	fs.StringVar(&kind, "kind", "variant", "value kind: variant, extension-object, data-value")
	fs.StringVar(&from, "from", "binary", "input encoding: binary or json")
	fs.BoolVar(&isHex, "hex", false, "binary input is hex text")
	if ok, err := parse(fs, args, stdout); !ok {
		return err
	}
	t, err := kindType(kind)
	if err != nil {
		return err
	}
	ctx, logger, err := c.context(stderr)
	if err != nil {
		return err
	}
	limit := ctx.EffectiveLimits().MaxMessageSize
	if isHex && from == "binary" {
		// Two digits per byte plus separators.
		limit *= 3
	}
	data, err := readInput(fs, stdin, limit)
	if err != nil {
		return err
	}
	var v any
	switch from {
	case "binary":
		if isHex {
			if data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), "")); err != nil {
				return fmt.Errorf("hex input: %w", err)
			}
		}
		v, err = decodeBinary(ctx, data, t)
	case "json":
		v, err = uatypes.DecodeJSON(ctx, bytes.NewReader(data), t)
	default:
		return fmt.Errorf("--from: unknown encoding %q", from)
	}
	if err != nil {
		return err
	}
	logger.Debug("decoded", "kind", kind, "from", from, "bytes", len(data))
	out, err := uatypes.MarshalJSON(ctx, v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", out)
	return err
}

func decodeBinary(ctx *uatypes.Context, data []byte, t uatypes.TypeID) (any, error) {
	switch t {
	case uatypes.TypeExtensionObject:
		return uatypes.UnmarshalExtensionObject(ctx, data)
	case uatypes.TypeDataValue:
		return uatypes.UnmarshalDataValue(ctx, data)
	}
	return uatypes.UnmarshalVariant(ctx, data)
}

func encodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c common
	var kind string
	var isHex bool
	fs := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	c.add(fs)
	fs.StringVar(&kind, "kind", "variant", "value kind: variant, extension-object, data-value")
	fs.BoolVar(&isHex, "hex", false, "write hex text instead of raw bytes")
	if ok, err := parse(fs, args, stdout); !ok {
		return err
	}
	t, err := kindType(kind)
	if err != nil {
		return err
	}
	ctx, _, err := c.context(stderr)
	if err != nil {
		return err
	}
	data, err := readInput(fs, stdin, ctx.EffectiveLimits().MaxMessageSize)
	if err != nil {
		return err
	}
	v, err := uatypes.DecodeJSON(ctx, bytes.NewReader(data), t)
	if err != nil {
		return err
	}
	enc, ok := v.(uatypes.BinaryEncoder)
	if !ok {
		return fmt.Errorf("%s has no binary form", kind)
	}
	wire, err := uatypes.Marshal(ctx, enc)
	if err != nil {
		return err
	}
	if isHex {
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(wire))
		return err
	}
	_, err = stdout.Write(wire)
	return err
}

func nodesetCmd(args []string, stdout, stderr io.Writer) error {
	var c common
	var lenient bool
	fs := pflag.NewFlagSet("nodeset", pflag.ContinueOnError)
	c.add(fs)
	fs.BoolVar(&lenient, "lenient", false, "skip unsupported elements instead of failing")
	if ok, err := parse(fs, args, stdout); !ok {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("nodeset: no files given")
	}
	logger, err := c.logger(stderr)
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return err
	}
	cfg.NodeSets = append(cfg.NodeSets, fs.Args()...)
	cfg.LenientNodeSets = cfg.LenientNodeSets || lenient
	ctx, err := cfg.Build(logger)
	if err != nil {
		return err
	}
	for _, path := range fs.Args() {
		set, err := nodeset.LoadFile(path, nodeset.LoadOptions{Context: ctx, Lenient: cfg.LenientNodeSets, Logger: logger})
		if err != nil {
			return err
		}
		dict, err := set.Dictionary()
		if err != nil {
			return err
		}
		printNodeSet(stdout, path, set, dict)
	}
	return nil
}

func printNodeSet(w io.Writer, path string, set *nodeset.NodeSet, dict *nodeset.DataTypeDictionary) {
	fmt.Fprintf(w, "%s\n  blake3 %x\n", path, set.Digest)
	for i, uri := range set.NamespaceURIs {
		fmt.Fprintf(w, "  ns[%d] %s\n", i+1, uri)
	}
	for _, m := range set.Models {
		fmt.Fprintf(w, "  model %s %s\n", m.URI, m.Version)
	}
	for _, def := range dict.Structures {
		fmt.Fprintf(w, "  structure %s (%s, %d fields) encoding %s\n", def.Name, def.Kind, len(def.Fields), def.EncodingID)
	}
	for _, e := range dict.Enumerations {
		fmt.Fprintf(w, "  enumeration %s (%d values)\n", e.Name, len(e.Values))
	}
	for _, v := range set.Variables {
		fmt.Fprintf(w, "  variable %s = %s\n", v.BrowseName, v.Value)
	}
	for _, s := range set.Skipped {
		fmt.Fprintf(w, "  skipped %s %s: %s\n", s.Element, s.NodeID, s.Reason)
	}
}
