// Package config defines the configuration structure for the skyview daemon.
// Configuration is loaded once at process initialization and is immutable
// thereafter. It follows 12-Factor principles by strictly separating code
// from configuration: values come from the environment (optionally seeded
// from a .env file), and the daemon entrypoint may override individual
// fields from CLI flags before the config is handed to components.
package config

import "time"

// defaultTileURLs is the historical Roque de los Muchachos webcam list.
// Sources are treated as unreliable; any of them may be replaced by a blank
// tile on a given assembly.
const defaultTileURLs = "http://fact-project.org/cam/skycam.php," +
	"http://www.gtc.iac.es/multimedia/netcam/camaraAllSky.jpg," +
	"http://www.magic.iac.es/site/weather/AllSkyCurrentImage.JPG," +
	"http://www.magic.iac.es/site/weather/can.jpg," +
	"http://www.fact-project.org/cam/cam.php," +
	"http://www.fact-project.org/cam/lidcam.php," +
	"http://iris.not.iac.es/axis-cgi/jpg/image.cgi," +
	"http://www.tng.iac.es/webcam/get.html?resolution=640x480&compression=30&clock=1&date=1," +
	"http://www.magic.iac.es/site/weather/lastHUM6t.jpg," +
	"http://www.magic.iac.es/site/weather/lastWPK6t.jpg"

// Config is the top-level configuration struct for skyview. It is populated
// once during process initialization and never modified. Sub-components
// receive only the specific subsets they require.
type Config struct {
	LogLevel string `envconfig:"SKYVIEW_LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"SKYVIEW_LOG_FILE"`

	Sequencer SequencerConfig
	Overview  OverviewConfig
	Status    StatusConfig

	// ListenAddr enables the read-only HTTP status surface when non-empty
	// (e.g. ":9180"). Empty disables the server entirely.
	ListenAddr string `envconfig:"SKYVIEW_LISTEN_ADDR"`
}

// SequencerConfig holds the nightly scheduling parameters.
//
// The window boundary hours have drifted across historical deployments, so
// they are configuration with defaults rather than constants: acquisition
// runs from StartHour through midnight to MorningEndHour (exclusive), and
// encoding is due between MorningEndHour and EncodeDeadlineHour.
type SequencerConfig struct {
	ImageBase   string `envconfig:"SKYVIEW_IMAGE_BASE" default:"." validate:"required"`
	ImageSubdir string `envconfig:"SKYVIEW_IMAGE_SUBDIR" default:"overview"`
	VideoBase   string `envconfig:"SKYVIEW_VIDEO_BASE" default:"." validate:"required"`
	VideoSubdir string `envconfig:"SKYVIEW_VIDEO_SUBDIR" default:"video"`

	StartHour          int `envconfig:"SKYVIEW_START_HOUR" default:"17" validate:"min=0,max=23"`
	MorningEndHour     int `envconfig:"SKYVIEW_MORNING_END_HOUR" default:"7" validate:"min=0,max=23"`
	EncodeDeadlineHour int `envconfig:"SKYVIEW_ENCODE_DEADLINE_HOUR" default:"12" validate:"min=0,max=23"`

	TickPeriod time.Duration `envconfig:"SKYVIEW_TICK_PERIOD" default:"60s" validate:"min=1s"`

	// TrashAfterEncode moves the night's frame files to the trash
	// directory (never a permanent erase) after a successful encode.
	TrashAfterEncode bool `envconfig:"SKYVIEW_TRASH_AFTER_ENCODE" default:"false"`

	// FFmpegBinary is the external encoder executable looked up on PATH.
	FFmpegBinary string `envconfig:"SKYVIEW_FFMPEG_BINARY" default:"ffmpeg"`
}

// OverviewConfig enumerates the tile sources, the per-tile resolution, and
// the grid layout of the composite image.
type OverviewConfig struct {
	TileURLs []string `envconfig:"SKYVIEW_TILE_URLS" default:"" validate:"-"`

	TileRows int `envconfig:"SKYVIEW_TILE_ROWS" default:"480" validate:"min=1"`
	TileCols int `envconfig:"SKYVIEW_TILE_COLS" default:"640" validate:"min=1"`
	GridRows int `envconfig:"SKYVIEW_GRID_ROWS" default:"3" validate:"min=1"`
	GridCols int `envconfig:"SKYVIEW_GRID_COLS" default:"4" validate:"min=1"`

	FetchTimeout     time.Duration `envconfig:"SKYVIEW_FETCH_TIMEOUT" default:"15s" validate:"min=1s"`
	FetchConcurrency int           `envconfig:"SKYVIEW_FETCH_CONCURRENCY" default:"6" validate:"min=1"`

	JPEGQuality int `envconfig:"SKYVIEW_JPEG_QUALITY" default:"90" validate:"min=1,max=100"`
}

// StatusConfig holds the telescope status source settings. An empty URL
// disables the source; the status tile then renders blank.
type StatusConfig struct {
	URL     string        `envconfig:"SKYVIEW_STATUS_URL"`
	Timeout time.Duration `envconfig:"SKYVIEW_STATUS_TIMEOUT" default:"10s" validate:"min=1s"`
}
