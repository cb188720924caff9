package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/anisan-cli/playerview/console"
	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/history"
	"github.com/anisan-cli/playerview/icon"
	"github.com/anisan-cli/playerview/inline"
	"github.com/anisan-cli/playerview/key"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/playback"
	"github.com/anisan-cli/playerview/player"
	"github.com/anisan-cli/playerview/resource"
	"github.com/anisan-cli/playerview/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

// errEngineExited is returned when mpv goes away before a resource was loaded.
var errEngineExited = errors.New("mpv exited before playback started")

// exitedEarly reports errEngineExited if the controller holds no resource once
// its pending requests are applied, which happens when mpv could not be reached.
func exitedEarly(ctrl interface {
	Flush(context.Context) error
	Current() *resource.Resource
}) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := ctrl.Flush(ctx); err != nil {
		log.Warnf("play: flush after mpv exit: %v", err)
	}
	if ctrl.Current() == nil {
		return errEngineExited
	}
	return nil
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("auto-play", true, "Start playback as soon as the media is ready")
	lo.Must0(viper.BindPFlag(key.PlayerAutoPlay, playCmd.Flags().Lookup("auto-play")))

	playCmd.Flags().Bool("auto-replay", true, "Restart the media when it reaches the end")
	lo.Must0(viper.BindPFlag(key.PlayerAutoReplay, playCmd.Flags().Lookup("auto-replay")))

	playCmd.Flags().IntP("interval", "i", 1000, "Playback position update interval in milliseconds")
	lo.Must0(viper.BindPFlag(key.PlayerTimeInterval, playCmd.Flags().Lookup("interval")))

	playCmd.Flags().BoolP("json", "j", false, "Stream playback events to stdout as JSON lines")
	playCmd.Flags().BoolP("continue", "c", false, "Play the most recent history entry")
}

// playCmd plays one locator until mpv exits, the media ends without auto-replay, or the user interrupts.
var playCmd = &cobra.Command{
	Use:   "play [locator]",
	Short: "Play a local file or an http(s) stream",
	Example: "  playerview play ~/Videos/clip.mp4\n" +
		"  playerview play --auto-replay=false https://example.com/stream.m3u8\n" +
		"  playerview play --continue --json",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		locator, err := resolveLocator(args, lo.Must(cmd.Flags().GetBool("continue")))
		handleErr(err)

		if _, err := lookupEngine(); err != nil {
			printMissingDependencyError(viper.GetString(key.PlayerMpvPath))
			handleErr(err)
		}

		handleErr(play(locator, lo.Must(cmd.Flags().GetBool("json"))))
	},
}

// resolveLocator picks the locator from the arguments, the history, or a prompt, in that order.
func resolveLocator(args []string, fromHistory bool) (string, error) {
	var raw string

	switch {
	case len(args) > 0:
		raw = args[0]
	case fromHistory:
		latest, err := history.Default().Latest()
		if err != nil {
			return "", err
		}
		entry, ok := latest.Get()
		if !ok {
			return "", errors.New("history is empty")
		}
		raw = entry.Locator
	default:
		prompt := &survey.Input{
			Message: "Locator",
			Help:    "A local path, a file:// URL or an http(s) URL",
		}
		validate := func(ans any) error {
			_, err := resource.ParseLocator(ans.(string))
			return err
		}
		if err := survey.AskOne(prompt, &raw, survey.WithValidator(validate)); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				os.Exit(0)
			}
			return "", err
		}
	}

	return resource.ParseLocator(raw)
}

// session is the listener installed for one play invocation.
type session struct {
	playback.Listener

	autoReplay bool
	once       sync.Once
	finished   chan error
}

func (s *session) finish(err error) {
	s.once.Do(func() {
		s.finished <- err
		close(s.finished)
	})
}

func (s *session) PlaybackStatus(r *resource.Resource, status engine.ItemStatus, err error) {
	s.Listener.PlaybackStatus(r, status, err)
	if status == engine.StatusFailed {
		s.finish(fmt.Errorf("%s: %w", r.Locator, err))
	}
}

func (s *session) PlaybackEnded(r *resource.Resource) {
	s.Listener.PlaybackEnded(r)
	if !s.autoReplay {
		s.finish(nil)
	}
}

func play(locator string, asJSON bool) error {
	interval := time.Duration(viper.GetInt(key.PlayerTimeInterval)) * time.Millisecond

	eng := player.New(player.Options{
		Path:          viper.GetString(key.PlayerMpvPath),
		ForceWindow:   viper.GetBool(key.PlayerForceWindow),
		SocketRetries: viper.GetInt(key.PlayerSocketRetries),
	})

	opts := playback.Options{
		AutoPlay:   viper.GetBool(key.PlayerAutoPlay),
		AutoReplay: viper.GetBool(key.PlayerAutoReplay),
		Interval:   interval,
	}
	ctrl := playback.New(eng, opts)

	var (
		listeners []playback.Listener
		onTime    func(time.Duration)
	)
	if asJSON {
		w := inline.New(os.Stdout)
		listeners, onTime = append(listeners, w), w.Time
	} else {
		p := console.New(os.Stderr, ctrl.State)
		listeners, onTime = append(listeners, p), p.Time
	}
	if viper.GetBool(key.HistorySave) {
		listeners = append(listeners, history.NewRecorder(history.Default()))
	}

	s := &session{
		Listener:   playback.Tee(listeners...),
		autoReplay: opts.AutoReplay,
		finished:   make(chan error, 1),
	}
	ctrl.SetListener(playback.Weak(s))
	ctrl.ObserveTime(interval, onTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("play: %s (auto-play %t, auto-replay %t)", locator, opts.AutoPlay, opts.AutoReplay)
	ctrl.Play(locator)
	if !opts.AutoPlay && !asJSON {
		fmt.Fprintf(os.Stderr, "%s auto-play is off, unpause in the mpv window\n", style.Faint(icon.Get(icon.Pause)))
	}

	var err error
	select {
	case <-ctx.Done():
	case <-eng.Wait():
		err = exitedEarly(ctrl)
	case err = <-s.finished:
	}

	ctrl.Close()
	select {
	case <-ctrl.Done():
	case <-time.After(shutdownTimeout):
		log.Warnf("play: controller did not drain in %s", shutdownTimeout)
	}

	if closeErr := eng.Close(); closeErr != nil {
		log.Warnf("play: close engine: %v", closeErr)
	}

	// The controller only holds s weakly.
	runtime.KeepAlive(s)
	return err
}
