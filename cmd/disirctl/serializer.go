package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kspt-johs/disir-go/pkg/disir"
	"github.com/kspt-johs/disir-go/plugins/jsonserializer"
	"github.com/kspt-johs/disir-go/plugins/yamlserializer"
)

// codec is the subset of yamlserializer/jsonserializer.Serializer both
// mold.go and config.go need, chosen by file extension the way api/
// handlers chooses one by Content-Type.
type codec interface {
	DecodeMold(data []byte) (*disir.Mold, error)
	DecodeConfig(data []byte, mold *disir.Mold) (*disir.Config, error)
}

func codecForPath(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonserializer.New(true)
	default:
		return yamlserializer.New(true)
	}
}

func decodeMoldFile(path string) (*disir.Mold, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mold, err := codecForPath(path).DecodeMold(data)
	if err != nil {
		return nil, fmt.Errorf("decode mold %s: %w", path, err)
	}
	return mold, nil
}

func decodeConfigFile(path string, mold *disir.Mold) (*disir.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := codecForPath(path).DecodeConfig(data, mold)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
