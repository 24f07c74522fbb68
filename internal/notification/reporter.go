package notification

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/sirupsen/logrus"
)

// Reporter receives run results and failures. It never feeds anything back
// into the pipeline.
type Reporter interface {
	Correlation(label string, res correlation.Result) error
	Success(message string) error
	Failure(message string) error
}

// Console prints results in colour and mirrors them to the log.
type Console struct {
	Out    io.Writer
	Logger logrus.FieldLogger
}

func NewConsole(out io.Writer, logger logrus.FieldLogger) *Console {
	return &Console{Out: out, Logger: logger}
}

func (c *Console) Correlation(label string, res correlation.Result) error {
	c.Logger.WithFields(logrus.Fields{
		"x": res.X, "y": res.Y, "n": res.N, "r": res.R, "r2": res.R2,
	}).Info("correlation computed")
	_, err := color.New(color.FgCyan).Fprintf(c.Out, "%s\n  %s vs %s\n  r  = %.4f\n  r² = %.4f\n  n  = %d\n",
		label, res.X, res.Y, res.R, res.R2, res.N)
	return err
}

func (c *Console) Success(message string) error {
	_, err := color.New(color.FgGreen).Fprintln(c.Out, message)
	return err
}

func (c *Console) Failure(message string) error {
	c.Logger.Error(message)
	_, err := color.New(color.FgRed).Fprintln(c.Out, message)
	return err
}

// Multi fans every report out to all reporters and joins their errors.
type Multi []Reporter

func (m Multi) Correlation(label string, res correlation.Result) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Correlation(label, res))
	}
	return errors.Join(errs...)
}

func (m Multi) Success(message string) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Success(message))
	}
	return errors.Join(errs...)
}

func (m Multi) Failure(message string) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Failure(message))
	}
	return errors.Join(errs...)
}

func formatCorrelation(label string, res correlation.Result) string {
	return fmt.Sprintf("%s\n\n%s vs %s\nr = %.4f\nr² = %.4f\nn = %d", label, res.X, res.Y, res.R, res.R2, res.N)
}
