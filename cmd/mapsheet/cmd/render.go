package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	geojson "github.com/paulmach/go.geojson"
	"github.com/spf13/cobra"

	"mapsheet/internal/config"
	"mapsheet/internal/geo"
	"mapsheet/internal/layer"
	"mapsheet/internal/render"
)

var (
	pageWidth  int
	pageHeight int
	border     int
	overlap    int
	maxScale   float64
	minScale   float64
	cropSpec   string

	outPattern string
	background string
	stroke     string
	fill       string
	lineWidth  float64
	dashSpec   string

	filterSpec  string
	matchSpec   string
	matchStroke string

	verbose bool
)

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Render vector files to PNG sheets",
	Long: `Render loads each input file as a layer, lays all layers out with a
shared scale and writes one PNG per sheet.

Without --max-scale the content is fitted onto a single page. With
--max-scale the page doubles (turning 90 degrees each time) until the
drawing reaches that scale, and every sheet of the resulting grid is
written. --crop renders a fixed viewport instead, given as
"minX,minY,maxX,maxY" in source coordinates.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	cfg := config.LoadConfig()
	renderCmd.Flags().IntVar(&pageWidth, "width", cfg.PageWidth, "page width in pixels")
	renderCmd.Flags().IntVar(&pageHeight, "height", cfg.PageHeight, "page height in pixels")
	renderCmd.Flags().IntVar(&border, "border", cfg.Border, "blank margin on every page edge, pixels")
	renderCmd.Flags().IntVar(&overlap, "overlap", cfg.Overlap, "shared strip between adjacent sheets, pixels")
	renderCmd.Flags().Float64Var(&maxScale, "max-scale", cfg.MaxScale, "paginate until the drawing reaches this scale (0 = single page)")
	renderCmd.Flags().Float64Var(&minScale, "min-scale", cfg.MinScale, "stop paginating when a doubling would not beat this scale")
	renderCmd.Flags().StringVar(&cropSpec, "crop", "", "render this viewport only: minX,minY,maxX,maxY")
	renderCmd.Flags().StringVarP(&outPattern, "out", "o", cfg.OutPattern, "output path pattern with one %s for the sheet id")
	renderCmd.Flags().StringVar(&background, "background", cfg.Background, "page background as a hex color")
	renderCmd.Flags().StringVar(&stroke, "stroke", cfg.Stroke, "stroke color as hex")
	renderCmd.Flags().StringVar(&fill, "fill", cfg.Fill, "polygon fill color as hex (empty = outline only)")
	renderCmd.Flags().Float64Var(&lineWidth, "line-width", cfg.LineWidth, "stroke width in pixels")
	renderCmd.Flags().StringVar(&dashSpec, "dash", "", "dash pattern, comma-separated lengths")
	renderCmd.Flags().StringVar(&filterSpec, "filter", "", "only draw features whose property matches KEY=VALUE")
	renderCmd.Flags().StringVar(&matchSpec, "match", "", "recolor features whose property matches KEY=VALUE")
	renderCmd.Flags().StringVar(&matchStroke, "match-stroke", "#ff0000", "stroke color for --match features")
	renderCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log layout decisions")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	layers := make([]*layer.Layer, 0, len(args))
	for _, path := range args {
		l, err := layer.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("layer loaded", "name", l.Name, "features", len(l.Features))
		layers = append(layers, l)
	}

	style := render.Style{
		Stroke: render.StrokeStyle{Color: gg.Hex(stroke).Color(), Width: lineWidth},
	}
	if dashSpec != "" {
		dash, err := parseFloats(dashSpec)
		if err != nil {
			return fmt.Errorf("parse --dash: %w", err)
		}
		style.Stroke.Dash = dash
	}
	if fill != "" {
		style.Fill = &render.FillStyle{Color: gg.Hex(fill).Color()}
	}

	opts := []render.Option{
		render.WithLayers(layers...),
		render.WithBackground(gg.Hex(background).Color()),
		render.WithStyle(style),
		render.WithLogger(log),
	}
	if filterSpec != "" {
		key, want, err := splitKV(filterSpec, "--filter")
		if err != nil {
			return err
		}
		opts = append(opts, render.WithFilter(func(f *geojson.Feature, _ map[string]any) bool {
			got, err := f.PropertyString(key)
			return err == nil && got == want
		}))
	}
	if matchSpec != "" {
		key, want, err := splitKV(matchSpec, "--match")
		if err != nil {
			return err
		}
		alt := gg.Hex(matchStroke).Color()
		opts = append(opts, render.WithStyleFunc(func(f *geojson.Feature, _ map[string]any, def render.Style) (render.Style, bool) {
			if got, err := f.PropertyString(key); err == nil && got == want {
				def.Stroke.Color = alt
			}
			return def, true
		}))
	}

	r := render.New(opts...)

	switch {
	case cropSpec != "":
		vp, err := parseViewport(cropSpec)
		if err != nil {
			return fmt.Errorf("parse --crop: %w", err)
		}
		if err := r.CropFeatures(vp, pageWidth, pageHeight); err != nil {
			return err
		}
	case maxScale > 0:
		if err := r.Paginate(pageWidth, pageHeight, maxScale, minScale, border, overlap); err != nil {
			return err
		}
	default:
		if err := r.FitToPage(pageWidth, pageHeight, border); err != nil {
			return err
		}
	}

	paths, err := r.SavePages(outPattern)
	if err != nil {
		return err
	}
	log.Info("render complete", "sheets", len(paths), "scale", r.Scale())
	return nil
}

func splitKV(spec, flag string) (key, value string, err error) {
	key, value, ok := strings.Cut(spec, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("%s wants KEY=VALUE, got %q", flag, spec)
	}
	return key, value, nil
}

func parseFloats(spec string) ([]float64, error) {
	parts := strings.Split(spec, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseViewport(spec string) (geo.Envelope, error) {
	vals, err := parseFloats(spec)
	if err != nil {
		return geo.Envelope{}, err
	}
	if len(vals) != 4 {
		return geo.Envelope{}, fmt.Errorf("want 4 coordinates, got %d", len(vals))
	}
	return geo.NewEnvelope(vals[0], vals[1], vals[2], vals[3]), nil
}
