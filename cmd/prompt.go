package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"cine-reservas-cli/model"
)

var errNoFunctions = errors.New("there are no functions with free seats")

func promptText(label string, check func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: check,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(value), nil
}

// promptConfirm asks a yes/no question. Anything but yes is a no.
func promptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return true, nil
}

// discard adapts a normalising validator to promptui's check signature.
func discard[T any](fn func(string) (T, error)) func(string) error {
	return func(value string) error {
		_, err := fn(value)
		return err
	}
}

// promptSelectFunction lists the functions that still have free seats, in
// file order, and returns the chosen id.
func promptSelectFunction(functions []model.Function, titles map[string]string) (string, error) {
	var (
		labels []string
		ids    []string
	)
	for _, fn := range functions {
		if fn.SoldOut() {
			continue
		}
		labels = append(labels, fmt.Sprintf("%s · %s · room %s · %s · %d free",
			fn.ID, movieLabel(fn.MovieID, titles), fn.Room, fn.Time, fn.FreeCount()))
		ids = append(ids, fn.ID)
	}
	if len(labels) == 0 {
		return "", errNoFunctions
	}

	searcher := func(input string, index int) bool {
		return strings.Contains(strings.ToLower(labels[index]), strings.ToLower(strings.TrimSpace(input)))
	}
	selectFunction := promptui.Select{
		Label:    "Select function",
		Items:    labels,
		Size:     10,
		Searcher: searcher,
	}
	index, _, err := selectFunction.Run()
	if err != nil {
		return "", fmt.Errorf("select function: %w", err)
	}
	return ids[index], nil
}
