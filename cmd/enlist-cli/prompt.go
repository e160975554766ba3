package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-enlist/pkg/form"
	"github.com/goliatone/go-enlist/pkg/power"
	"github.com/goliatone/go-enlist/pkg/refdata"
	"github.com/goliatone/go-enlist/pkg/schema"
)

// runForm drives one or more enlistment rounds: prompt every field, submit,
// and loop while the operator keeps choosing "save and add another".
func runForm(ctx context.Context, ctrl *form.Controller) error {
	for {
		if err := promptValues(ctrl); err != nil {
			return err
		}

		again := false
		confirm := &survey.Confirm{Message: "Save and add another?"}
		if err := survey.AskOne(confirm, &again); err != nil {
			return err
		}

		err := ctrl.Submit(ctx, again)
		if err != nil {
			if issues, ok := validationIssues(err); ok {
				printIssues(issues)
				continue
			}
			if ctrl.State() == form.StateFailed {
				fmt.Println(ctrl.LastError().Display())
				continue
			}
			return err
		}
		if !again {
			return nil
		}
	}
}

func promptValues(ctrl *form.Controller) error {
	snapshot := ctrl.Snapshot()
	values := ctrl.Values()

	hostname, err := input("Machine name (optional)", stringAt(values, schema.FieldHostname))
	if err != nil {
		return err
	}
	if err := ctrl.SetValue(schema.FieldHostname, hostname); err != nil {
		return err
	}

	for _, selector := range []struct {
		field      string
		label      string
		collection string
	}{
		{schema.FieldArchitecture, "Architecture", refdata.CollectionArchitectures},
		{schema.FieldDomain, "Domain", refdata.CollectionDomains},
		{schema.FieldPool, "Resource pool", refdata.CollectionPools},
		{schema.FieldZone, "Zone", refdata.CollectionZones},
	} {
		choice, err := selectOne(selector.label, names(snapshot[selector.collection]), stringAt(values, selector.field))
		if err != nil {
			return err
		}
		if err := ctrl.SetValue(selector.field, choice); err != nil {
			return err
		}
	}

	variant, err := selectOne("Power type", ctrl.Types(), stringAt(values, schema.FieldPowerType))
	if err != nil {
		return err
	}
	if err := ctrl.SetVariant(variant); err != nil {
		return err
	}

	macOptional := variant == power.TypeIPMI
	macLabel := "Boot MAC address"
	if macOptional {
		macLabel += " (optional)"
	}
	pxeMAC, err := inputValidated(macLabel, "", macValidator(macOptional))
	if err != nil {
		return err
	}
	if err := ctrl.SetValue(schema.FieldPXEMAC, pxeMAC); err != nil {
		return err
	}

	extras, err := promptExtraMACs()
	if err != nil {
		return err
	}
	if err := ctrl.SetValue(schema.FieldExtraMACs, extras); err != nil {
		return err
	}

	return promptPowerParameters(ctrl, variant)
}

func promptPowerParameters(ctrl *form.Controller, variant string) error {
	for _, spec := range ctrl.VariantFields(variant) {
		label := spec.Label
		if label == "" {
			label = spec.Name
		}
		if !spec.Required {
			label += " (optional)"
		}

		var answer string
		var err error
		switch spec.Kind {
		case power.KindChoice:
			answer, err = selectOne(label, spec.Choices, stringOf(spec.Default))
		case power.KindPassword:
			prompt := &survey.Password{Message: label}
			err = survey.AskOne(prompt, &answer)
		case power.KindMAC:
			answer, err = inputValidated(label, stringOf(spec.Default), macValidator(!spec.Required))
		default:
			answer, err = input(label, stringOf(spec.Default))
		}
		if err != nil {
			return err
		}
		if err := ctrl.SetPowerParameter(spec.Name, answer); err != nil {
			return err
		}
	}
	return nil
}

func promptExtraMACs() ([]string, error) {
	var macs []string
	for {
		more := false
		confirm := &survey.Confirm{Message: "Add another MAC address?"}
		if err := survey.AskOne(confirm, &more); err != nil {
			return nil, err
		}
		if !more {
			return macs, nil
		}
		mac, err := inputValidated("MAC address", "", macValidator(false))
		if err != nil {
			return nil, err
		}
		macs = append(macs, mac)
	}
}

func input(message, preset string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: preset}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

func inputValidated(message, preset string, validate func(string) error) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: preset}
	opts := []survey.AskOpt{
		survey.WithValidator(func(ans any) error {
			value, _ := ans.(string)
			return validate(value)
		}),
	}
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return answer, nil
}

func selectOne(message string, options []string, preset string) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	prompt := &survey.Select{Message: message, Options: options}
	if preset != "" {
		prompt.Default = preset
	}
	var answer string
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

func macValidator(optional bool) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			if optional {
				return nil
			}
			return fmt.Errorf("a MAC address is required")
		}
		if !schema.MACPattern.MatchString(trimmed) {
			return fmt.Errorf("%q is not a valid MAC address", trimmed)
		}
		return nil
	}
}

func printIssues(issues schema.Issues) {
	for _, field := range issues.Fields() {
		for _, message := range issues[field] {
			fmt.Printf("  %s: %s\n", field, message)
		}
	}
}

func names(collection refdata.Collection) []string {
	out := make([]string, 0, len(collection.Items))
	for _, record := range collection.Items {
		out = append(out, record.Name)
	}
	return out
}

func stringAt(values map[string]any, field string) string {
	value, _ := values[field].(string)
	return value
}

func stringOf(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func validationIssues(err error) (schema.Issues, bool) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr.Issues, true
	}
	return nil, false
}
