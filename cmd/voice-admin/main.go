// voice-admin is an operator CLI for the voice provider account: quota
// inspection, inventory listing, manual eviction, direct cloning and
// text-to-speech, and character-usage checks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"

	"github.com/vocalbrand/voice-service/internal/elevenlabs"
	"github.com/vocalbrand/voice-service/internal/voicequota"
)

// Flag names.
const (
	flagQuota   = "quota"
	flagList    = "list"
	flagEvictTo = "evict-to"
	flagClone   = "clone"
	flagName    = "name"
	flagTTS     = "tts"
	flagVoice   = "voice"
	flagOutput  = "output"
	flagUsage   = "usage"
	flagBaseURL = "base-url"
	flagCeiling = "ceiling"
	flagKeep    = "keep"
	flagTimeout = "timeout"
)

// Flag descriptions.
const (
	flagQuotaDesc   = "Print the current voice-quota snapshot and exit"
	flagListDesc    = "List all voices in the account"
	flagEvictToDesc = "Evict oldest custom voices down to this keep count"
	flagCloneDesc   = "Clone a voice from the given audio file"
	flagNameDesc    = "Display name for the cloned voice (required with --clone)"
	flagTTSDesc     = "Synthesize this text with an existing voice"
	flagVoiceDesc   = "Voice id for --tts"
	flagOutputDesc  = "Output file for synthesized audio (.mp3)"
	flagUsageDesc   = "Print the account's character-quota usage"
	flagBaseURLDesc = "Provider API base URL (defaults to production)"
	flagCeilingDesc = "Custom-voice ceiling for quota checks"
	flagKeepDesc    = "Keep count used by the clone flow's cleanup pass"
	flagTimeoutDesc = "Provider HTTP timeout in seconds"
)

// Error messages.
const (
	errNoAction         = "one of --quota, --list, --evict-to, --clone, --tts or --usage must be provided"
	errMultipleActions  = "only one action may be specified per invocation"
	errCloneNeedsName   = "--clone requires --name"
	errTTSNeedsVoice    = "--tts requires --voice"
	errAPIKeyNotSet     = "ELEVENLABS_API_KEY environment variable not set"
	errFailedToInitLog  = "failed to initialize logger: %w"
	errFailedToReadFile = "failed to read audio file %s: %w"
	errFailedToWrite    = "failed to write output file %s: %w"
)

// Defaults.
const (
	defaultTimeoutSeconds = 40
	defaultOutputFile     = "preview.mp3"
	logFileName           = "voice-admin.log"
	envElevenLabsAPIKey   = "ELEVENLABS_API_KEY"
	evictToUnset          = -1
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	quota   bool
	list    bool
	evictTo int
	clone   string
	name    string
	tts     string
	voice   string
	output  string
	usage   bool
	baseURL string
	ceiling int
	keep    int
	timeout int
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	err := validateArgumentsOnly(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	// Operator convenience: a local .env may carry the API key.
	_ = godotenv.Load()

	apiKey := os.Getenv(envElevenLabsAPIKey)
	if apiKey == "" {
		return errors.New(errAPIKeyNotSet)
	}

	adminLog, err := logger.New(os.TempDir(), logFileName)
	if err != nil {
		return fmt.Errorf(errFailedToInitLog, err)
	}
	defer adminLog.Close()

	client := elevenlabs.New(
		flags.baseURL,
		apiKey,
		time.Duration(flags.timeout)*time.Second,
		elevenlabs.WithLogger(adminLog),
	)

	return handleExecution(context.Background(), client, adminLog, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags
	flag.BoolVar(&flags.quota, flagQuota, false, flagQuotaDesc)
	flag.BoolVar(&flags.list, flagList, false, flagListDesc)
	flag.IntVar(&flags.evictTo, flagEvictTo, evictToUnset, flagEvictToDesc)
	flag.StringVar(&flags.clone, flagClone, "", flagCloneDesc)
	flag.StringVar(&flags.name, flagName, "", flagNameDesc)
	flag.StringVar(&flags.tts, flagTTS, "", flagTTSDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.output, flagOutput, defaultOutputFile, flagOutputDesc)
	flag.BoolVar(&flags.usage, flagUsage, false, flagUsageDesc)
	flag.StringVar(&flags.baseURL, flagBaseURL, "", flagBaseURLDesc)
	flag.IntVar(&flags.ceiling, flagCeiling, voicequota.DefaultMaxCustomVoices, flagCeilingDesc)
	flag.IntVar(&flags.keep, flagKeep, voicequota.DefaultKeepCount, flagKeepDesc)
	flag.IntVar(&flags.timeout, flagTimeout, defaultTimeoutSeconds, flagTimeoutDesc)
	flag.Parse()

	return flags
}

// validateArgumentsOnly checks that exactly one action was requested and
// that its companion flags are present.
func validateArgumentsOnly(flags appFlags) error {
	actions := 0

	for _, selected := range []bool{
		flags.quota,
		flags.list,
		flags.evictTo != evictToUnset,
		flags.clone != "",
		flags.tts != "",
		flags.usage,
	} {
		if selected {
			actions++
		}
	}

	if actions == 0 {
		return errors.New(errNoAction)
	}

	if actions > 1 {
		return errors.New(errMultipleActions)
	}

	if flags.clone != "" && flags.name == "" {
		return errors.New(errCloneNeedsName)
	}

	if flags.tts != "" && flags.voice == "" {
		return errors.New(errTTSNeedsVoice)
	}

	return nil
}

// handleExecution dispatches to the selected action.
func handleExecution(
	ctx context.Context,
	client *elevenlabs.Client,
	adminLog *logger.Logger,
	flags appFlags,
) error {
	directory := voicequota.NewDirectory(client, adminLog)

	switch {
	case flags.quota:
		return printQuota(ctx, directory, flags.ceiling, adminLog)
	case flags.list:
		return printVoices(ctx, directory)
	case flags.evictTo != evictToUnset:
		return runEviction(ctx, directory, client, flags.evictTo, adminLog)
	case flags.clone != "":
		return runClone(ctx, client, directory, flags, adminLog)
	case flags.tts != "":
		return runSynthesis(ctx, client, flags)
	case flags.usage:
		return printUsage(ctx, client)
	}

	return nil
}

func printQuota(
	ctx context.Context,
	directory *voicequota.Directory,
	ceiling int,
	adminLog *logger.Logger,
) error {
	guard := voicequota.NewGuard(directory, ceiling, adminLog)
	snapshot := guard.Snapshot(ctx)

	if snapshot.FetchFailed {
		fmt.Println("quota: inventory fetch failed, treating as no headroom")

		return nil
	}

	fmt.Printf("custom voices:   %d / %d\n", snapshot.CustomCount, snapshot.MaxCustom)
	fmt.Printf("premade voices:  %d\n", snapshot.PremadeCount)
	fmt.Printf("space remaining: %d\n", snapshot.SpaceRemaining)

	return nil
}

func printVoices(ctx context.Context, directory *voicequota.Directory) error {
	voices, err := directory.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}

	for _, voice := range voices {
		created := time.Unix(voice.CreatedAt, 0).UTC().Format(time.RFC3339)
		fmt.Printf("%-24s %-12s %s  %s\n", voice.ID, voice.Category, created, voice.Name)
	}

	fmt.Printf("%d voices\n", len(voices))

	return nil
}

func runEviction(
	ctx context.Context,
	directory *voicequota.Directory,
	client *elevenlabs.Client,
	keepCount int,
	adminLog *logger.Logger,
) error {
	evictor := voicequota.NewEvictor(directory, client, adminLog)
	report := evictor.EvictTo(ctx, keepCount)

	fmt.Printf("%s (deleted %d, failed %d)\n", report.Message, report.Deleted, report.Failed)

	for _, ref := range report.DeletedVoices {
		fmt.Printf("  deleted %s (%s)\n", ref.Name, ref.ID)
	}

	for _, ref := range report.FailedVoices {
		fmt.Printf("  FAILED  %s (%s)\n", ref.Name, ref.ID)
	}

	return nil
}

func runClone(
	ctx context.Context,
	client *elevenlabs.Client,
	directory *voicequota.Directory,
	flags appFlags,
	adminLog *logger.Logger,
) error {
	audio, err := os.ReadFile(flags.clone)
	if err != nil {
		return fmt.Errorf(errFailedToReadFile, flags.clone, err)
	}

	guard := voicequota.NewGuard(directory, flags.ceiling, adminLog)
	evictor := voicequota.NewEvictor(directory, client, adminLog)
	coordinator := voicequota.NewCoordinator(client, guard, evictor, voicequota.Policy{
		KeepCount:      flags.keep,
		MinSampleBytes: 0,
		MaxAttempts:    0,
		InitialBackoff: 0,
		BackoffCap:     0,
	}, adminLog)

	outcome := coordinator.CloneVoice(ctx, audio, flags.name)

	fmt.Printf("status:  %s\n", outcome.Status)
	fmt.Printf("message: %s\n", outcome.Message)

	if outcome.Cloned() {
		fmt.Printf("voice:   %s\n", outcome.VoiceID)
	}

	if outcome.ErrorDetail != "" {
		fmt.Printf("detail:  %s\n", outcome.ErrorDetail)
	}

	return nil
}

func runSynthesis(ctx context.Context, client *elevenlabs.Client, flags appFlags) error {
	audio, err := client.Synthesize(ctx, flags.voice, flags.tts)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	err = os.WriteFile(flags.output, audio, 0o600)
	if err != nil {
		return fmt.Errorf(errFailedToWrite, flags.output, err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(audio), flags.output)

	return nil
}

func printUsage(ctx context.Context, client *elevenlabs.Client) error {
	subscription, err := client.Subscription(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription usage: %w", err)
	}

	fmt.Printf("characters used: %d / %d\n",
		subscription.CharacterCount, subscription.CharacterLimit)

	if subscription.CharacterLimit > 0 {
		percent := float64(subscription.CharacterCount) /
			float64(subscription.CharacterLimit) * 100

		fmt.Printf("usage: %.1f%%\n", percent)
	}

	return nil
}
