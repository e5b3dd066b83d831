package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/terra"
	"github.com/esimov/terra/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┌┬┐┌─┐┬─┐┬─┐┌─┐
 │ ├┤ ├┬┘├┬┘├─┤
 ┴ └─┘┴└─┴└─┴ ┴

Ridge/valley geometry engine for height fields.
    Version: %s

`

// pipeName is the conventional "-" stdin/stdout path name. The CLI does not
// consult it, so "-" is opened as an ordinary file name.
const pipeName = "-"

// Version indicates the current build version, set at link time.
var Version string

// effectSpecList collects repeated -e flags in the order they are given.
type effectSpecList []string

func (e *effectSpecList) String() string {
	if e == nil {
		return ""
	}
	return strings.Join(*e, " ")
}

func (e *effectSpecList) Set(v string) error {
	*e = append(*e, v)
	return nil
}

var (
	source      = flag.String("i", "", "Source image (required)")
	outPrefix   = flag.String("o", "./", "Output path prefix")
	stackKind   = flag.String("s", "erosion", "Stack kind: erosion|gradient")
	quantize    = flag.Float64("q", 1.0, "Source quantization")
	maxDim      = flag.Int("max-dim", 0, "Downscale the source so neither dimension exceeds this many pixels (0 disables)")
	effectSpecs effectSpecList
)

func init() {
	flag.Var(&effectSpecs, "e", "Effect spec id:p0.p1.p2... (hex or decimal id, repeatable)")
}

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, fmt.Sprintf(HelpBanner, Version))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *source == "" {
		fmt.Fprint(os.Stderr, utils.DecorateText("a source image is required (-i)\n", utils.ErrorMessage))
		flag.Usage()
		os.Exit(1)
	}

	kind, err := parseStackKind(*stackKind)
	if err != nil {
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}

	defaultMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("⛰ TERRA", utils.StatusMessage),
		utils.DecorateText("⇢ running effect stack (be patient, it may take a while)...", utils.DefaultMessage),
	)
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	var spinner *utils.Spinner
	if interactive {
		spinner = utils.NewSpinner(defaultMsg, time.Millisecond*80, true)
		spinner.Start()
	}

	now := time.Now()
	out, runErr := run(kind, *source, *outPrefix, float32(*quantize), *maxDim, effectSpecs)
	if interactive {
		spinner.Stop()
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, utils.DecorateText(runErr.Error(), utils.ErrorMessage))
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\nThe image has been saved as: %s\n",
		utils.DecorateText(out, utils.SuccessMessage),
	)
	fmt.Fprintf(os.Stderr, "Execution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage),
	)
}

// run loads the source height field, validates and pushes every effect
// spec onto a fresh stack of the given kind, executes it, and writes the
// RGBA8 result to outPrefix+"output.png". It returns the written path.
func run(kind terra.StackKind, src, outPrefix string, quantize float32, maxDim int, specs []string) (string, error) {
	hf, err := terra.LoadSourceHeightField(src, quantize, maxDim)
	if err != nil {
		return "", fmt.Errorf("failed to load the source image: %w", err)
	}

	buf := &terra.WorkingBuffer{
		W:      hf.W,
		H:      hf.H,
		Planes: [3]*terra.HeightField{hf, hf.Clone(), hf.Clone()},
	}

	stack := terra.NewEffectStack(kind)
	stack.Reporter = func(e *terra.EngineError) {
		fmt.Fprintln(os.Stderr, utils.DecorateText(e.Error(), utils.ErrorMessage))
	}
	stack.DebugPrefix = outPrefix
	stack.SetSource(buf)

	for _, spec := range specs {
		id, params, perr := parseEffectSpec(spec)
		if perr != nil {
			fmt.Fprintln(os.Stderr, utils.DecorateText(perr.Error(), utils.ErrorMessage))
			continue
		}
		stack.Push(id, params)
	}

	result, engErr := stack.Run()
	if engErr != nil {
		return "", engErr
	}

	outPath := outPrefix + "output.png"
	if err := terra.SaveImage(outPath, terra.WorkingBufferToRGBA(result)); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return outPath, nil
}

func parseStackKind(s string) (terra.StackKind, error) {
	switch strings.ToLower(s) {
	case "erosion":
		return terra.StackErosion, nil
	case "gradient":
		return terra.StackGradient, nil
	default:
		return 0, fmt.Errorf("unknown stack kind %q (want erosion|gradient)", s)
	}
}

// parseEffectSpec decodes a repeatable -e flag value of the form
// "id:p0.p1.p2..." into an effect id (hex with a 0x prefix, or decimal)
// and its packed u8 parameter bytes.
func parseEffectSpec(spec string) (terra.EffectID, []byte, error) {
	idPart, paramPart, _ := strings.Cut(spec, ":")

	var id uint64
	var err error
	if rest, ok := strings.CutPrefix(idPart, "0x"); ok {
		id, err = strconv.ParseUint(rest, 16, 8)
	} else if rest, ok := strings.CutPrefix(idPart, "0X"); ok {
		id, err = strconv.ParseUint(rest, 16, 8)
	} else {
		id, err = strconv.ParseUint(idPart, 10, 8)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("invalid effect id %q in %q: %w", idPart, spec, err)
	}

	var params []byte
	if paramPart != "" {
		for _, p := range strings.Split(paramPart, ".") {
			v, err := strconv.ParseUint(p, 10, 8)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid param %q in %q: %w", p, spec, err)
			}
			params = append(params, byte(v))
		}
	}
	return terra.EffectID(id), params, nil
}
