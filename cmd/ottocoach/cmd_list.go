package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/presets"
	"github.com/hammamikhairi/ottocoach/internal/speech"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the English voices the coach can speak with",
	Long: "List the English voices offered by the Azure speech service. Requires " +
		speech.EnvAzureSpeechKey + " and " + speech.EnvAzureSpeechRegion + ".",
	RunE: runVoices,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in session presets",
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(voicesCmd)
	rootCmd.AddCommand(presetsCmd)
}

func runVoices(cmd *cobra.Command, args []string) error {
	log, closeLog := setupLogger()
	defer closeLog()

	key := os.Getenv(speech.EnvAzureSpeechKey)
	region := os.Getenv(speech.EnvAzureSpeechRegion)
	if key == "" || region == "" {
		return fmt.Errorf("set %s and %s to list voices", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	all, err := speech.NewAzureClient(key, region, log).ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("listing voices: %w", err)
	}
	registry := speech.NewVoiceRegistry(all, englishLocale)

	out := cmd.OutOrStdout()
	for _, name := range registry.Names() {
		v, _ := registry.Lookup(name)
		fmt.Fprintf(out, "%-32s %-8s %s\n", v.ShortName, v.Locale, v.Gender)
	}
	fmt.Fprintf(out, "\n%d voices\n", registry.Len())
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	log, closeLog := setupLogger()
	defer closeLog()

	list, err := presets.NewMemorySource(log).List(context.Background())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range list {
		fmt.Fprintf(out, "%-16s %-20s %s (%s)\n", p.ID, p.Name, p.Params, fmtOffset(p.Params.Total()))
		if p.Description != "" {
			fmt.Fprintf(out, "%-16s %s\n", "", p.Description)
		}
	}
	return nil
}
