package zaplog

import (
	"go.uber.org/zap"

	"github.com/meridianpay/checkout-sdk/internal/domain/ports"
)

// Adapter adapts zap.Logger to the Logger port interface
type Adapter struct {
	logger *zap.Logger
}

// New wraps an existing zap logger
func New(logger *zap.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// NewDevelopment creates a development logger
func NewDevelopment() (*Adapter, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Adapter{logger: logger}, nil
}

// NewProduction creates a production logger
func NewProduction() (*Adapter, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Adapter{logger: logger}, nil
}

// Info logs an info message
func (a *Adapter) Info(msg string, fields ...ports.Field) {
	a.logger.Info(msg, convertFields(fields)...)
}

// Error logs an error message
func (a *Adapter) Error(msg string, fields ...ports.Field) {
	a.logger.Error(msg, convertFields(fields)...)
}

// Warn logs a warning message
func (a *Adapter) Warn(msg string, fields ...ports.Field) {
	a.logger.Warn(msg, convertFields(fields)...)
}

// Debug logs a debug message
func (a *Adapter) Debug(msg string, fields ...ports.Field) {
	a.logger.Debug(msg, convertFields(fields)...)
}

// convertFields converts port fields to zap fields
func convertFields(fields []ports.Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = zap.Any(f.Key, f.Value)
	}
	return zapFields
}
