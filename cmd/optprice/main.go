package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/optlib/binomial"
	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/greeks"
	"github.com/meenmo/optlib/montecarlo"
	"github.com/meenmo/optlib/option"
	"github.com/meenmo/optlib/utils"
)

type priceInput struct {
	TaskID string `json:"task_id,omitempty"`

	Spot     float64 `json:"spot"`
	Strike   float64 `json:"strike"`
	Rate     float64 `json:"rate"`
	Vol      float64 `json:"vol"`
	DivYield float64 `json:"div_yield"`
	Kind     string  `json:"kind"`
	Style    string  `json:"style"`

	// Either expiry_years, or valuation_date + expiry_date (ACT/365F).
	ExpiryYears   float64 `json:"expiry_years"`
	ValuationDate string  `json:"valuation_date,omitempty"`
	ExpiryDate    string  `json:"expiry_date,omitempty"`

	// Method is one of bs, binomial, mc, mc-multistep or all.
	Method    string `json:"method"`
	Steps     int    `json:"steps"`
	Paths     int    `json:"paths"`
	Reduction string `json:"reduction"`
	Seed      uint64 `json:"seed"`
	Workers   int    `json:"workers"`
	MCSteps   int    `json:"mc_steps"`

	Greeks bool `json:"greeks"`
}

type methodResult struct {
	Method    string  `json:"method"`
	Price     float64 `json:"price"`
	StdError  float64 `json:"std_error,omitempty"`
	Paths     int     `json:"paths,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

type greeksJSON struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
	Vanna float64 `json:"vanna"`
	Volga float64 `json:"volga"`
	Charm float64 `json:"charm"`
	Speed float64 `json:"speed"`
}

type priceOutput struct {
	TaskID  string         `json:"task_id,omitempty"`
	Results []methodResult `json:"results,omitempty"`
	Greeks  *greeksJSON    `json:"greeks,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: optprice -input <path>")
		fmt.Fprintln(os.Stderr, "Price a vanilla option analytically, on a CRR lattice or by Monte Carlo.")
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Usage: optprice -input <path>")
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
	outputs := make([]priceOutput, 0, len(inputs))
	for _, in := range inputs {
		out, err := process(in)
		if err != nil {
			hadError = true
			outputs = append(outputs, priceOutput{TaskID: in.TaskID, Error: err.Error()})
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

func process(in priceInput) (*priceOutput, error) {
	c, err := buildContract(in)
	if err != nil {
		return nil, err
	}

	methods, err := resolveMethods(in.Method, c.Style)
	if err != nil {
		return nil, err
	}

	mcCfg := montecarlo.Config{Paths: in.Paths, Seed: in.Seed, Workers: in.Workers}
	if mcCfg.Reduction, err = parseReduction(in.Reduction); err != nil {
		return nil, err
	}

	out := priceOutput{TaskID: in.TaskID}
	for _, m := range methods {
		var res option.PricingResult
		switch m {
		case "bs":
			res, err = blackscholes.Price(c)
		case "binomial":
			res, err = binomial.Price(c, in.Steps)
		case "mc":
			res, err = montecarlo.Price(c, mcCfg)
		case "mc-multistep":
			res, err = montecarlo.PriceMultiStep(c, mcCfg, in.MCSteps)
		}
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, methodResult{
			Method:    res.Method,
			Price:     res.Price,
			StdError:  res.StdError,
			Paths:     res.Paths,
			ElapsedMS: res.Elapsed.Seconds() * 1000,
		})
	}

	if in.Greeks {
		g, err := greeks.Compute(c, nil)
		if err != nil {
			return nil, err
		}
		out.Greeks = &greeksJSON{
			Delta: g.Delta, Gamma: g.Gamma, Theta: g.Theta,
			Vega: g.Vega, Rho: g.Rho,
			Vanna: g.Vanna, Volga: g.Volga,
			Charm: g.Charm, Speed: g.Speed,
		}
	}

	return &out, nil
}

func buildContract(in priceInput) (option.Contract, error) {
	expiry := in.ExpiryYears
	if expiry == 0 && in.ExpiryDate != "" {
		if in.ValuationDate == "" {
			return option.Contract{}, fmt.Errorf("expiry_date requires valuation_date")
		}
		val, err := utils.ParseDate(in.ValuationDate)
		if err != nil {
			return option.Contract{}, err
		}
		exp, err := utils.ParseDate(in.ExpiryDate)
		if err != nil {
			return option.Contract{}, err
		}
		expiry = utils.YearsToExpiry(val, exp)
	}

	kind, err := parseKind(in.Kind)
	if err != nil {
		return option.Contract{}, err
	}
	style, err := parseStyle(in.Style)
	if err != nil {
		return option.Contract{}, err
	}

	c := option.Contract{
		Spot: in.Spot, Strike: in.Strike, Expiry: expiry,
		Rate: in.Rate, Vol: in.Vol, DivYield: in.DivYield,
		Kind: kind, Style: style,
	}
	if err := c.Validate(); err != nil {
		return option.Contract{}, err
	}
	return c, nil
}

// resolveMethods maps the requested method to the pricers to run. American
// exercise restricts the set to the lattice; the other pricers assume
// exercise only at expiry.
func resolveMethods(method string, style option.Style) ([]string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" || m == "all" {
		if style == option.American {
			return []string{"binomial"}, nil
		}
		return []string{"bs", "binomial", "mc", "mc-multistep"}, nil
	}
	switch m {
	case "bs", "mc", "mc-multistep":
		if style == option.American {
			return nil, fmt.Errorf("method %q requires European exercise", m)
		}
		return []string{m}, nil
	case "binomial":
		return []string{m}, nil
	}
	return nil, fmt.Errorf("unknown method %q (bs, binomial, mc, mc-multistep, all)", method)
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

func parseStyle(s string) (option.Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "european", "eu":
		return option.European, nil
	case "american", "am":
		return option.American, nil
	}
	return 0, fmt.Errorf("unknown style %q (european or american)", s)
}

func parseReduction(s string) (montecarlo.Reduction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "plain":
		return montecarlo.None, nil
	case "antithetic":
		return montecarlo.Antithetic, nil
	case "stratified":
		return montecarlo.Stratified, nil
	case "control-variate", "controlvariate", "cv":
		return montecarlo.ControlVariate, nil
	}
	return 0, fmt.Errorf("unknown reduction %q (none, antithetic, stratified, control-variate)", s)
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]priceInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []priceInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input priceInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []priceInput{input}, false, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(priceOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
