package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/optlib/option"
	"github.com/meenmo/optlib/volsurface"
)

type calibrateInput struct {
	TaskID string `json:"task_id,omitempty"`

	Spot     float64     `json:"spot"`
	Rate     float64     `json:"rate"`
	DivYield float64     `json:"div_yield"`
	Quotes   []quoteJSON `json:"quotes"`
	Workers  int         `json:"workers"`

	// Synthetic, when set, generates the quote grid from a smile model
	// instead of reading Quotes.
	Synthetic *syntheticJSON `json:"synthetic,omitempty"`
}

type quoteJSON struct {
	Strike float64 `json:"strike"`
	Expiry float64 `json:"expiry"`
	Price  float64 `json:"price"`
	Kind   string  `json:"kind"`
}

type syntheticJSON struct {
	Strikes  []float64 `json:"strikes"`
	Expiries []float64 `json:"expiries"`
	Base     float64   `json:"base"`
	Skew     float64   `json:"skew"`
	Smile    float64   `json:"smile"`
	Floor    float64   `json:"floor"`
}

type pointJSON struct {
	Strike      float64 `json:"strike"`
	Expiry      float64 `json:"expiry"`
	ImpliedVol  float64 `json:"implied_vol"`
	MarketPrice float64 `json:"market_price"`
	ModelPrice  float64 `json:"model_price"`
	AbsError    float64 `json:"abs_error"`
}

type calibrateOutput struct {
	TaskID    string      `json:"task_id,omitempty"`
	Quotes    int         `json:"quotes"`
	RMSE      float64     `json:"rmse"`
	MaxError  float64     `json:"max_error"`
	ElapsedMS float64     `json:"elapsed_ms"`
	Surface   []pointJSON `json:"surface,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	summaryOnly := flag.Bool("summary", false, "Report aggregates only, omit the per-quote surface")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: volcal -input <path> [-summary]")
		fmt.Fprintln(os.Stderr, "Calibrate an implied volatility surface from option quotes.")
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Usage: volcal -input <path> [-summary]")
			os.Exit(2)
		}
	}

	raw, err := readInput(path)
	if err != nil {
		exitError(fmt.Sprintf("read input: %v", err))
	}

	inputs, isArray, err := parseInputs(raw)
	if err != nil {
		exitError(fmt.Sprintf("parse JSON: %v", err))
	}

	hadError := false
	outputs := make([]calibrateOutput, 0, len(inputs))
	for _, in := range inputs {
		out, err := process(in, *summaryOnly)
		if err != nil {
			hadError = true
			outputs = append(outputs, calibrateOutput{TaskID: in.TaskID, Error: err.Error()})
			continue
		}
		outputs = append(outputs, *out)
	}

	if isArray {
		b, _ := json.Marshal(outputs)
		fmt.Println(string(b))
	} else {
		b, _ := json.Marshal(outputs[0])
		fmt.Println(string(b))
	}

	if hadError {
		os.Exit(1)
	}
}

func process(in calibrateInput, summaryOnly bool) (*calibrateOutput, error) {
	quotes, err := buildQuotes(in)
	if err != nil {
		return nil, err
	}

	sum, err := volsurface.CalibrateWithConfig(quotes, in.Spot, in.Rate, in.DivYield,
		volsurface.Config{Workers: in.Workers})
	if err != nil {
		return nil, err
	}

	out := calibrateOutput{
		TaskID:    in.TaskID,
		Quotes:    sum.Quotes,
		RMSE:      sum.RMSE,
		MaxError:  sum.MaxError,
		ElapsedMS: sum.Elapsed.Seconds() * 1000,
	}
	if !summaryOnly {
		out.Surface = make([]pointJSON, len(sum.Surface))
		for i, pt := range sum.Surface {
			out.Surface[i] = pointJSON{
				Strike:      pt.Strike,
				Expiry:      pt.Expiry,
				ImpliedVol:  pt.ImpliedVol,
				MarketPrice: pt.MarketPrice,
				ModelPrice:  pt.ModelPrice,
				AbsError:    pt.AbsError,
			}
		}
	}
	return &out, nil
}

func buildQuotes(in calibrateInput) ([]volsurface.MarketQuote, error) {
	if in.Synthetic != nil {
		smile := volsurface.SmileParams{
			Base:  in.Synthetic.Base,
			Skew:  in.Synthetic.Skew,
			Smile: in.Synthetic.Smile,
			Floor: in.Synthetic.Floor,
		}
		if smile == (volsurface.SmileParams{}) {
			smile = volsurface.DefaultSmile
		}
		return volsurface.SyntheticQuotes(in.Spot, in.Rate, in.Synthetic.Strikes, in.Synthetic.Expiries, smile)
	}

	quotes := make([]volsurface.MarketQuote, 0, len(in.Quotes))
	for i, q := range in.Quotes {
		kind, err := parseKind(q.Kind)
		if err != nil {
			return nil, fmt.Errorf("quote %d: %w", i, err)
		}
		quotes = append(quotes, volsurface.MarketQuote{
			Strike: q.Strike,
			Expiry: q.Expiry,
			Price:  q.Price,
			Kind:   kind,
		})
	}
	return quotes, nil
}

func parseKind(s string) (option.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "call", "c":
		return option.Call, nil
	case "put", "p":
		return option.Put, nil
	}
	return 0, fmt.Errorf("unknown kind %q (call or put)", s)
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]calibrateInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []calibrateInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input calibrateInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []calibrateInput{input}, false, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(calibrateOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
