package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/oisee/utf-transcoder/pkg/check"
	"github.com/oisee/utf-transcoder/pkg/coder"
	"github.com/oisee/utf-transcoder/pkg/config"
	"github.com/oisee/utf-transcoder/pkg/inspect"
	"github.com/oisee/utf-transcoder/pkg/stream"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "utfx",
		Short: "Byte-serial UTF-8 / UTF-16 / UTF-32 transcoder",
	}

	// transcode command
	var from, to, errPolicy string
	var output string
	var checkRange bool

	transcodeCmd := &cobra.Command{
		Use:   "transcode [file]",
		Short: "Convert a byte stream between encodings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromEnc, err := stream.ParseEncoding(from)
			if err != nil {
				return err
			}
			toEnc, err := stream.ParseEncoding(to)
			if err != nil {
				return err
			}
			policy, err := stream.ParsePolicy(errPolicy)
			if err != nil {
				return err
			}

			in, closeIn, err := openInput(args)
			if err != nil {
				return err
			}
			defer closeIn()
			out, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()

			t := stream.New(fromEnc, toEnc, stream.Options{
				CheckRange: checkRange,
				OnError:    policy,
				BufferSize: cfg.Transcode.BufferSize,
			})
			n, err := t.Transcode(out, in)
			if err != nil {
				return fmt.Errorf("transcode failed after %d bytes: %w", n, err)
			}
			return nil
		},
	}
	transcodeCmd.Flags().StringVar(&from, "from", "utf8", "Source encoding: utf8, utf16le, utf16be, utf32le, utf32be")
	transcodeCmd.Flags().StringVar(&to, "to", "utf8", "Target encoding")
	transcodeCmd.Flags().StringVar(&errPolicy, "errors", cfg.Transcode.Errors, "Error policy: replace, fail, preserve")
	transcodeCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	transcodeCmd.Flags().BoolVar(&checkRange, "check-range", cfg.Coder.CheckRange, "Flag code points beyond U+10FFFF")

	// classify command
	var clFrom, clFile string
	var clCheckRange bool

	classifyCmd := &cobra.Command{
		Use:   "classify [hex bytes...]",
		Short: "Describe each character of an input byte by byte",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromEnc, err := stream.ParseEncoding(clFrom)
			if err != nil {
				return err
			}
			var data []byte
			switch {
			case clFile != "":
				data, err = os.ReadFile(clFile)
				if err != nil {
					return err
				}
			case len(args) > 0:
				data, err = parseHexBytes(args)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("need hex bytes or --file")
			}
			return classify(cmd.OutOrStdout(), data, fromEnc, clCheckRange)
		},
	}
	classifyCmd.Flags().StringVar(&clFrom, "from", "utf8", "Input encoding")
	classifyCmd.Flags().StringVarP(&clFile, "file", "f", "", "Read input from a file")
	classifyCmd.Flags().BoolVar(&clCheckRange, "check-range", cfg.Coder.CheckRange, "Flag code points beyond U+10FFFF")

	// selfcheck command
	var workers int
	var full, verbose bool
	var jsonOut string

	selfcheckCmd := &cobra.Command{
		Use:   "selfcheck",
		Short: "Run the conformance sweeps over the code point space",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := check.Run(check.Config{
				NumWorkers: workers,
				ChunkSize:  cfg.Selfcheck.ChunkSize,
				Full:       full,
				Verbose:    verbose,
			})
			fmt.Printf("%d checks in %s, %d mismatches\n",
				s.Checked, s.Elapsed.Round(1e6), s.Failed)
			if jsonOut != "" {
				f, err := os.Create(jsonOut)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := check.WriteJSON(f, s.Results); err != nil {
					return err
				}
				fmt.Printf("Written to %s\n", jsonOut)
			}
			if s.Failed > 0 {
				for i, m := range s.Results {
					if i >= 10 {
						fmt.Printf("  ... %d more\n", len(s.Results)-i)
						break
					}
					fmt.Printf("  %06X %s: want %s, got %s\n", m.Code, m.Stage, m.Want, m.Got)
				}
				return fmt.Errorf("%d mismatches", s.Failed)
			}
			return nil
		},
	}
	selfcheckCmd.Flags().IntVar(&workers, "workers", cfg.Selfcheck.Workers, "Number of workers (0 = NumCPU)")
	selfcheckCmd.Flags().BoolVar(&full, "full", cfg.Selfcheck.Full, "Denser sweep of the extended planes")
	selfcheckCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	selfcheckCmd.Flags().StringVar(&jsonOut, "json", "", "Write mismatches to a JSON file")

	// inspect command
	var insCheckRange, insBigEndian bool

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Interactive register inspector",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := coder.New()
			c.CheckRange = insCheckRange
			c.BigEndian = insBigEndian
			return inspect.NewTUI(c).Run()
		},
	}
	inspectCmd.Flags().BoolVar(&insCheckRange, "check-range", cfg.Coder.CheckRange, "Flag code points beyond U+10FFFF")
	inspectCmd.Flags().BoolVar(&insBigEndian, "big-endian", cfg.BigEndian(), "Big-endian UTF-16/UTF-32 byte order")

	rootCmd.AddCommand(transcodeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(selfcheckCmd)
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("UTFX_CONFIG"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// parseHexBytes accepts "E2 98 83" style arguments, with or without spaces
// between pairs.
func parseHexBytes(args []string) ([]byte, error) {
	joined := strings.ReplaceAll(strings.Join(args, ""), " ", "")
	if len(joined)%2 != 0 {
		return nil, fmt.Errorf("odd hex digit count")
	}
	out := make([]byte, 0, len(joined)/2)
	for i := 0; i < len(joined); i += 2 {
		v, err := strconv.ParseUint(joined[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad hex byte %q", joined[i:i+2])
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// classify drives the coder over the input and prints one line per
// character, flushing when the character completes (ready, or four bytes for
// UTF-32 input), on retry, or at end of input.
func classify(w io.Writer, data []byte, from stream.Encoding, checkRange bool) error {
	c := coder.New()
	c.CheckRange = checkRange
	c.BigEndian = from == stream.UTF16BE || from == stream.UTF32BE

	write := func(b byte) {
		switch from {
		case stream.UTF8:
			c.WriteUTF8(b)
		case stream.UTF16LE, stream.UTF16BE:
			c.WriteUTF16(b)
		default:
			c.WriteUTF32(b)
		}
	}
	complete := func() bool {
		if from == stream.UTF32LE || from == stream.UTF32BE {
			return c.CinEOF()
		}
		return c.Ready()
	}

	var pending []byte
	report := func() {
		fmt.Fprintf(w, "%-18s R=%08X %-18s %s %s\n",
			fmt.Sprintf("% X", pending), c.R(), c.Class().Kind, flagString(c), propString(c))
	}

	queue := append([]byte(nil), data...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		write(b)
		if c.Retry() {
			resubmit := []byte{b}
			if c.Ready() && (from == stream.UTF16LE || from == stream.UTF16BE) && len(pending) == 3 {
				resubmit = []byte{pending[2], b}
			}
			report()
			c.Reset()
			pending = pending[:0]
			queue = append(resubmit, queue...)
			continue
		}
		pending = append(pending, b)
		if complete() {
			report()
			c.Reset()
			pending = pending[:0]
		}
	}
	if !c.Empty() {
		report()
	}
	return nil
}

func flagString(c *coder.Coder) string {
	st := c.Status()
	set := []struct {
		on   bool
		name string
	}{
		{st.Ready, "ready"}, {st.Retry, "retry"}, {st.Invalid, "invalid"},
		{st.Overlong, "overlong"}, {st.Nonuni, "nonuni"}, {st.Error, "error"},
	}
	var names []string
	for _, f := range set {
		if f.on {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "[partial]"
	}
	return "[" + strings.Join(names, ",") + "]"
}

func propString(c *coder.Coder) string {
	p := c.Props()
	set := []struct {
		on   bool
		name string
	}{
		{p.Normal, "normal"}, {p.Control, "control"}, {p.Surrogate, "surrogate"},
		{p.Highchar, "highchar"}, {p.Private, "private"}, {p.Nonchar, "nonchar"},
	}
	var names []string
	for _, f := range set {
		if f.on {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "{" + strings.Join(names, ",") + "}"
}
