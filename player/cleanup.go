package player

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/anisan-cli/playerview/log"
	"github.com/spf13/afero"
)

// SocketTTL is how old a socket must be before it counts as left behind by a crashed session.
const SocketTTL = 24 * time.Hour

// CollectGarbage removes stale mpv sockets from dir and reports how many went away.
func CollectGarbage(dir string) int {
	var removed int
	fs := filesystem.API()

	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		if !strings.HasPrefix(name, "mpv-") || !strings.HasSuffix(name, ".sock") {
			return nil
		}

		if time.Since(info.ModTime()) > SocketTTL {
			if err := fs.Remove(path); err == nil {
				removed++
			}
		}
		return nil
	})

	if removed > 0 {
		log.Debugf("player: removed %d stale sockets from %s", removed, dir)
	}
	return removed
}
