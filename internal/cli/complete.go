package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/internal/storage/file"
)

// globalFlags are the top-level splitt flags, mapped to whether they take a value.
var globalFlags = map[string]bool{
	"dir":      true,
	"bill":     true,
	"currency": true,
	"config":   true,
	"plain":    false,
}

var currencies = predict.Set{"USD", "EUR", "GBP", "CAD", "JPY"}

// Complete answers a shell completion request (COMP_LINE set) and exits. It
// returns without doing anything on a normal run.
//
// Top-level flags come before the command, which the completion library does
// not accept, so they are read here: -dir and -bill select where ids are
// predicted from, and the rest of the line is handed to the library.
func Complete(env *Env, name string) {
	line := os.Getenv("COMP_LINE")
	if line == "" {
		// Install and uninstall requests.
		Completion(env).Complete(name)
		return
	}
	if point, err := strconv.Atoi(os.Getenv("COMP_POINT")); err == nil && point >= 0 && point < len(line) {
		line = line[:point]
	}

	rest, candidates, done := env.completeGlobal(line)
	if done {
		for _, c := range candidates {
			fmt.Println(c)
		}
		os.Exit(0)
	}
	os.Setenv("COMP_LINE", rest)
	os.Setenv("COMP_POINT", strconv.Itoa(len(rest)))
	Completion(env).Complete(name)
}

// completeGlobal consumes the top-level flags at the start of line and applies
// -dir and -bill to e. When the word under the cursor is itself a top-level flag
// or its value, it returns the candidates and done. Otherwise rest is line
// without the top-level flags, ready for the command tree.
func (e *Env) completeGlobal(line string) (rest string, candidates []string, done bool) {
	words := strings.Fields(line)
	if len(words) == 0 || strings.HasSuffix(line, " ") {
		words = append(words, "")
	}
	last := len(words) - 1

	i := 1
	for i < last {
		name, value, hasValue := splitFlag(words[i])
		takesValue, ok := globalFlags[name]
		if !ok {
			break
		}
		i++
		if takesValue && !hasValue {
			if i == last {
				return "", e.predictFlag(name, words[last]), true
			}
			value = words[i]
			i++
		}
		e.setFlag(name, value)
	}

	if i == last && strings.HasPrefix(words[last], "-") {
		name, value, hasValue := splitFlag(words[last])
		if hasValue {
			return "", e.predictFlag(name, value), true
		}
		for flag := range globalFlags {
			if strings.HasPrefix("-"+flag, words[last]) {
				candidates = append(candidates, "-"+flag)
			}
		}
		sort.Strings(candidates)
		return "", candidates, true
	}

	return strings.Join(append([]string{words[0]}, words[i:]...), " "), nil, false
}

// splitFlag splits "-name=value" or "--name". name is empty for non-flags.
func splitFlag(word string) (name, value string, hasValue bool) {
	if !strings.HasPrefix(word, "-") {
		return "", "", false
	}
	word = strings.TrimPrefix(strings.TrimPrefix(word, "-"), "-")
	name, value, hasValue = strings.Cut(word, "=")
	return name, value, hasValue
}

func (e *Env) setFlag(name, value string) {
	switch name {
	case "dir":
		e.Dir = value
	case "bill":
		e.Bill = value
	}
}

func (e *Env) predictFlag(name, prefix string) []string {
	var p complete.Predictor
	switch name {
	case "dir":
		p = predict.Dirs("*")
	case "bill":
		p = complete.PredictFunc(e.predictBills)
	case "currency":
		p = currencies
	case "config":
		p = predict.Files("*.hcl")
	default:
		return nil
	}
	var out []string
	for _, c := range p.Predict(prefix) {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Completion returns the completion tree of the splitt commands. Person and
// item ids are predicted from e's current bill.
func Completion(env *Env) *complete.Command {
	people := env.predictIDs(func(b *models.Bill) []int64 {
		ids := make([]int64, len(b.Participants))
		for i, p := range b.Participants {
			ids[i] = p.ID
		}
		return ids
	})
	items := env.predictIDs(func(b *models.Bill) []int64 {
		ids := make([]int64, len(b.Items))
		for i, item := range b.Items {
			ids[i] = item.ID
		}
		return ids
	})
	modes := predict.Set{string(models.SplitProportional), string(models.SplitEven)}

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"add-person":    {Args: predict.Something},
			"rename-person": {Args: people},
			"remove-person": {Args: people},
			"add-item": {
				Flags: map[string]complete.Predictor{"c": predict.Something},
				Args:  predict.Something,
			},
			"rename-item": {Args: items},
			"set-cost":    {Args: items},
			"remove-item": {Args: items},
			"assign":      {Args: predict.Or(items, people)},
			"import":      {Args: predict.Files("*")},
			"tax": {
				Flags: map[string]complete.Predictor{"default": predict.Nothing, "percent": predict.Something},
				Args:  predict.Something,
			},
			"tip": {
				Flags: map[string]complete.Predictor{"percent": predict.Something},
				Args:  predict.Something,
			},
			"mode":     {Args: predict.Or(predict.Set{"tax", "tip"}, modes)},
			"show":     {Flags: map[string]complete.Predictor{"plain": predict.Nothing}},
			"list":     {},
			"clear":    {},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}

func (e *Env) predictBills(prefix string) []string {
	entries, err := os.ReadDir(e.Dir)
	if err != nil {
		return nil
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if id := strings.TrimSuffix(name, ".json"); strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (e *Env) predictIDs(ids func(*models.Bill) []int64) complete.PredictFunc {
	return func(prefix string) []string {
		store, err := file.New(e.Dir)
		if err != nil {
			return nil
		}
		b, err := store.GetBill(context.Background(), e.Bill)
		if err != nil {
			return nil
		}
		var out []string
		for _, id := range ids(b) {
			if s := strconv.FormatInt(id, 10); strings.HasPrefix(s, prefix) {
				out = append(out, s)
			}
		}
		return out
	}
}
