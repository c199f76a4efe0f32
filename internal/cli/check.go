// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"errors"

	"github.com/alvinbaena/pwd-analyzer/internal/config"
	"github.com/alvinbaena/pwd-analyzer/pkg/analysis"
	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check [PASSWORD]",
		Short: "Analyse a password and check it against the Pwned Passwords corpus",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				if err := cobra.ExactArgs(1)(cmd, args); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return checkCommand(cmd.Context(), "")
			} else {
				return checkCommand(cmd.Context(), args[0])
			}
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	checkCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode, the input is masked.")
	checkCmd.Flags().BoolVarP(&hashed, "hashed", "s", false, "The input is a Hexadecimal SHA1 hash of the password. Only the breach lookup runs.")

	rootCmd.AddCommand(checkCmd)
}

func checkCommand(ctx context.Context, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	service, closer, err := newService(cfg, false)
	defer closer()
	if err != nil {
		return err
	}

	if !interactive {
		return checkInput(ctx, service, password)
	}

	label := "Password"
	if hashed {
		label = "SHA1 Hex hash"
		log.Info().Msgf("Flag 'hashed' is set. Please use SHA1 Hashed passwords.")
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a password")
			}
			if hashed {
				_, err := hibp.ParseDigest(input)
				return err
			}
			return nil
		},
	}
	if !hashed {
		prompt.Mask = '*'
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	if err = runInteractiveSession(ctx, prompt, service); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			log.Info().Msgf("Goodbye")
		} else {
			log.Error().Err(err).Msgf("Error during interactive session")
		}
		// No return to avoid the default cobra error message
		return nil
	}

	return nil
}

func runInteractiveSession(ctx context.Context, prompt promptui.Prompt, service *analysis.Service) error {
	for {
		result, err := prompt.Run()
		if err != nil {
			return err
		}

		if err = checkInput(ctx, service, result); err != nil {
			log.Error().Err(err).Msg("Error processing input")
		}
	}
}

func checkInput(ctx context.Context, service *analysis.Service, input string) error {
	if hashed {
		res, err := service.CheckHash(ctx, input)
		if err != nil {
			return err
		}
		printBreach(res)
		return nil
	}

	printReport(service.Analyze(ctx, input))
	return nil
}

func printReport(r analysis.Report) {
	log.Info().Msgf("Security score: %d/5", r.Strength.Score)
	for _, f := range r.Strength.Feedback {
		log.Info().Msgf("  - %s", f)
	}
	log.Info().Msgf("Estimated entropy: %.1f bits (upper bound, assumes random characters)", r.Strength.Entropy)
	log.Info().Msgf("Estimated time to crack: %s (offline attack on an unsalted fast hash)", r.Strength.CrackTime)

	if r.Patterns != nil {
		log.Info().Msgf("Pattern score: %d/4, crack time %s", r.Patterns.Score, r.Patterns.CrackTimeDisplay)
	}

	printBreach(r.Breach)
}

func printBreach(res hibp.Result) {
	p := message.NewPrinter(language.English)
	switch res.Status() {
	case hibp.StatusUnavailable:
		log.Warn().Err(res.Err).Msg("Unable to verify the password against the breach corpus")
	case hibp.StatusFound:
		log.Warn().Msgf("Leaked %s times. This password is in public breach corpora, change it immediately", p.Sprintf("%d", res.Count))
	default:
		log.Info().Msg("No breaches found")
	}
}
