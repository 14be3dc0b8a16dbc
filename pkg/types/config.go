package types

import "time"

// ParseConfig holds settings for reading FRD files.
type ParseConfig struct {
	// Step selects the stress block to join. Zero or negative selects the
	// last block in the file.
	Step int `json:"step" yaml:"step"`
}

// Colorscale names a color map used by the renderers.
type Colorscale string

const (
	ColorscaleViridis Colorscale = "Viridis"
	ColorscaleRdBu    Colorscale = "RdBu"
	ColorscaleJet     Colorscale = "Jet"
	ColorscaleHot     Colorscale = "Hot"
	ColorscaleGreys   Colorscale = "Greys"
)

// RenderConfig holds settings for the visualization stage.
type RenderConfig struct {
	// OutputDir is the directory images are written to (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Width and Height are the image size in pixels (default 1200x800).
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// Colorscale selects the color map (default Viridis).
	Colorscale Colorscale `json:"colorscale" yaml:"colorscale"`

	// Opacity is the isosurface fill opacity between 0 and 1 (default 0.4).
	Opacity float64 `json:"opacity" yaml:"opacity"`

	// Azimuth and Elevation orient the camera, in degrees.
	Azimuth   float64 `json:"azimuth" yaml:"azimuth"`
	Elevation float64 `json:"elevation" yaml:"elevation"`

	// Isovalues is the number of automatically chosen isosurfaces (default 3).
	Isovalues int `json:"isovalues" yaml:"isovalues"`

	// MeshCells is the marching cubes resolution along the longest axis (default 48).
	MeshCells int `json:"mesh_cells" yaml:"mesh_cells"`

	// Neighbors is the number of nodes used for field interpolation (default 8).
	Neighbors int `json:"neighbors" yaml:"neighbors"`
}

// ResultsConfig holds settings for the results store.
type ResultsConfig struct {
	// ResultsDir is the base directory for the results store (contains index/).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// FRDDir is the directory scanned by ingest (contains <series>/*.frd).
	FRDDir string `json:"frd_dir" yaml:"frd_dir"`

	// Step selects the stress block stored per file (see ParseConfig.Step).
	Step int `json:"step" yaml:"step"`
}

// CrackConfig holds settings for thermal crack index evaluation.
type CrackConfig struct {
	// AgeDays is the concrete age at the analysed instant.
	AgeDays float64 `json:"age_days" yaml:"age_days"`

	// FC28 is the 28-day compressive strength in MPa (default 30).
	FC28 float64 `json:"fc28" yaml:"fc28"`

	// StressScale converts stored stress values to MPa (default 1).
	StressScale float64 `json:"stress_scale" yaml:"stress_scale"`

	// Formula selects the tensile strength development curve: "aci"
	// (default), "ceb" or "kci".
	Formula string `json:"formula" yaml:"formula"`

	// FCT28 is the 28-day tensile strength in MPa. Zero derives it as
	// 10% of FC28.
	FCT28 float64 `json:"fct28" yaml:"fct28"`

	// A and B are the CEB-FIP development parameters (default 1).
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// SolverConfig holds settings for running CalculiX.
type SolverConfig struct {
	// Image is the container image used when ccx is not on PATH.
	Image string `json:"image" yaml:"image"`

	// FRDDir receives solved .frd files under <series>/.
	FRDDir string `json:"frd_dir" yaml:"frd_dir"`

	// DatDir receives solver .dat listings under <series>/.
	DatDir string `json:"dat_dir" yaml:"dat_dir"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8050").
	Addr string `json:"addr" yaml:"addr"`

	// RateLimit is the sustained requests per second per client.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Burst is the per-client burst size.
	Burst int `json:"burst" yaml:"burst"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Sliders lists the slider identifiers kept in sync.
	Sliders []string `json:"sliders" yaml:"sliders"`
}

// ClientConfig holds settings for talking to a running results API.
type ClientConfig struct {
	// URL is the base URL of the API (default "http://localhost:8050").
	URL string `json:"url" yaml:"url"`

	// MaxRetries bounds retries of rate-limited requests (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Parse   ParseConfig   `json:"parse" yaml:"parse"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	Results ResultsConfig `json:"results" yaml:"results"`
	Crack   CrackConfig   `json:"crack" yaml:"crack"`
	Solver  SolverConfig  `json:"solver" yaml:"solver"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Client  ClientConfig  `json:"client" yaml:"client"`
}
