package pipeline

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/JoeRonaldson/Predict-1500/neural"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// PlotHistory writes the training and validation loss per epoch to path. The
// image format follows the file extension (.png, .svg, .pdf).
func PlotHistory(h *neural.History, path string) error {
	if h == nil || len(h.Loss) == 0 {
		return errors.NewModelError("PlotHistory", "empty history", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "mse"
	p.Add(plotter.NewGrid())

	loss, err := plotter.NewLine(epochXYs(h.Loss))
	if err != nil {
		return errors.Wrap(err, "loss line")
	}
	loss.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	loss.Width = vg.Points(1.2)
	p.Add(loss)
	p.Legend.Add("loss", loss)

	if len(h.ValLoss) > 0 {
		val, err := plotter.NewLine(epochXYs(h.ValLoss))
		if err != nil {
			return errors.Wrap(err, "val_loss line")
		}
		val.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
		val.Width = vg.Points(1.2)
		val.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(val)
		p.Legend.Add("val_loss", val)
	}
	p.Legend.Top = true

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

func epochXYs(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	return pts
}
