package bstreefile

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/obs"
)

// buildConfig holds every build-path knob, defaulted the way the spec names
// them (§6 Configuration).
type buildConfig struct {
	l1KB       int
	diskKB     int
	fillFactor float64
	chunkSize  int
	kway       int
	tempDir    string
	metrics    *obs.Metrics
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		l1KB:       32,
		diskKB:     8192,
		fillFactor: 1.0,
		chunkSize:  50_000_000,
		kway:       7,
		tempDir:    ".bstree_tmp",
	}
}

// effectiveL1Bytes is l1_kb*1024*fill_factor, rounded down.
func (c *buildConfig) effectiveL1Bytes() int {
	return int(float64(c.l1KB*1024) * c.fillFactor)
}

func (c *buildConfig) diskBytes() int {
	return c.diskKB * 1024
}

// BuildOption configures NewBuilder.
type BuildOption func(*buildConfig) error

// WithL1KB sets the logical L1 page budget in kilobytes (default 32).
func WithL1KB(kb int) BuildOption {
	return func(c *buildConfig) error {
		if kb <= 0 {
			return fmt.Errorf("l1_kb must be positive, got %d", kb)
		}
		c.l1KB = kb
		return nil
	}
}

// WithDiskKB sets the logical disk page budget in kilobytes (default 8192).
func WithDiskKB(kb int) BuildOption {
	return func(c *buildConfig) error {
		if kb <= 0 {
			return fmt.Errorf("disk_kb must be positive, got %d", kb)
		}
		c.diskKB = kb
		return nil
	}
}

// WithFillFactor sets the fraction of l1_kb actually packed per L1 page
// (default 1.0). Must be in (0, 1].
func WithFillFactor(ff float64) BuildOption {
	return func(c *buildConfig) error {
		if ff <= 0 || ff > 1.0 {
			return fmt.Errorf("fill_factor must be in (0, 1], got %v", ff)
		}
		c.fillFactor = ff
		return nil
	}
}

// WithChunkSize sets the number of entries sorted per in-memory batch during
// a build (default 50_000_000).
func WithChunkSize(n int) BuildOption {
	return func(c *buildConfig) error {
		if n <= 0 {
			return fmt.Errorf("chunk_size must be positive, got %d", n)
		}
		c.chunkSize = n
		return nil
	}
}

// WithKway sets the maximum fan-in of the external merge sort (default 7).
func WithKway(k int) BuildOption {
	return func(c *buildConfig) error {
		if k < 2 {
			return fmt.Errorf("kway must be at least 2, got %d", k)
		}
		c.kway = k
		return nil
	}
}

// WithTempDir sets the scratch directory used to stage merge-sort chunks
// (default ".bstree_tmp").
func WithTempDir(dir string) BuildOption {
	return func(c *buildConfig) error {
		if dir == "" {
			return fmt.Errorf("temp_dir cannot be empty")
		}
		c.tempDir = dir
		return nil
	}
}

// WithBuildMetrics attaches a metrics sink to a build.
func WithBuildMetrics(m *obs.Metrics) BuildOption {
	return func(c *buildConfig) error {
		c.metrics = m
		return nil
	}
}

// queryConfig holds every query-path knob.
type queryConfig struct {
	metrics *obs.Metrics
}

func defaultQueryConfig() *queryConfig {
	return &queryConfig{}
}

// QueryOption configures Open.
type QueryOption func(*queryConfig) error

// WithQueryMetrics attaches a metrics sink to an opened Query.
func WithQueryMetrics(m *obs.Metrics) QueryOption {
	return func(c *queryConfig) error {
		c.metrics = m
		return nil
	}
}
