package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init construye el singleton una sola vez; llamadas posteriores no hacen
// nada. main.go lo llama antes de levantar el server.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L devuelve el singleton. Sin Init previo cae a un logger de desarrollo
// en nivel info, así los tests no necesitan configurar nada.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named agrega un nombre de componente al singleton (ej: "main", "audit").
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync descarga los buffers pendientes; va en un defer de main.go.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
