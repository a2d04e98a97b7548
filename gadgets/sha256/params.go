package sha256

import (
	"fmt"

	"github.com/consensys/plonksha/logger"
	"github.com/consensys/plonksha/plonk"
)

// MajorityStrategy selects how the Majority path handles a possible one-bit
// overflow in the high limb.
type MajorityStrategy uint8

const (
	// UseTwoTables registers a dedicated 10-bit-extraction radix-4 table for
	// the high limb, absorbing a one-bit overflow inside the lookup. Table
	// registration often comes for free as long as the total table count
	// stays below the next power of two.
	UseTwoTables MajorityStrategy = iota
	// RawOverflowCheck reuses the plain radix-4 table for every limb and
	// instead forces an explicit overflow extraction whenever the input could
	// be off by one bit: one fewer registered table, one extra gate sequence.
	RawOverflowCheck
)

func (s MajorityStrategy) String() string {
	if s == UseTwoTables {
		return "two tables"
	}
	return "raw overflow check"
}

type config struct {
	chNumChunks  int
	majNumChunks int
}

// Option configures gadget parameters at setup time.
type Option func(*config) error

// WithChooseChunkCount overrides the digit count per Choose normalization
// chunk, trading table size (7^n keys) against the number of chunks covering
// a register.
func WithChooseChunkCount(n int) Option {
	return func(c *config) error {
		if n < 1 || n > regWidth {
			return fmt.Errorf("choose chunk count %d out of range", n)
		}
		c.chNumChunks = n
		return nil
	}
}

// WithMajorityChunkCount overrides the digit count per Majority normalization
// chunk (4^n keys).
func WithMajorityChunkCount(n int) Option {
	return func(c *config) error {
		if n < 1 || n > regWidth {
			return fmt.Errorf("majority chunk count %d out of range", n)
		}
		c.majNumChunks = n
		return nil
	}
}

// GadgetParams is the immutable per-circuit configuration of the gadget: the
// majority strategy, the normalization chunk counts and the handles of the
// registered tables. It is created once at circuit-setup time and shared by
// reference across all gadget invocations in that circuit.
type GadgetParams struct {
	majorityStrategy MajorityStrategy
	chNumChunks      int
	majNumChunks     int

	// tables used for the chooser (ch) path
	base7Rot6Table       plonk.TableHandle
	base7Rot3Extr10Table plonk.TableHandle
	chNormalizationTable plonk.TableHandle
	chXorTable           plonk.TableHandle

	// tables used for the majority (maj) path
	base4Rot2Table        plonk.TableHandle
	base4Rot2Extr10Table  plonk.TableHandle
	hasBase4Extr10        bool
	majNormalizationTable plonk.TableHandle
	majXorTable           plonk.TableHandle
}

// NewGadgetParams registers the lookup tables the gadget needs and returns
// the resulting immutable parameters. Registration must complete before any
// gadget invocation begins; a duplicate name or unsupported width is a fatal
// setup error surfaced as a returned error.
func NewGadgetParams(sys plonk.ConstraintSystem, strategy MajorityStrategy, opts ...Option) (*GadgetParams, error) {
	cfg := config{
		chNumChunks:  chDefaultNumChunks,
		majNumChunks: majDefaultNumChunks,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	p := &GadgetParams{
		majorityStrategy: strategy,
		chNumChunks:      cfg.chNumChunks,
		majNumChunks:     cfg.majNumChunks,
	}

	var err error
	p.base7Rot6Table, err = sys.AddTable(newSparseRotateTable(chunkWidth, 6, 0, chooseBase, "sha256_base7_rot6_table"))
	if err != nil {
		return nil, err
	}
	p.base7Rot3Extr10Table, err = sys.AddTable(newSparseRotateTable(chunkWidth, 3, chunkWidth-1, chooseBase, "sha256_base7_rot3_extr10_table"))
	if err != nil {
		return nil, err
	}
	p.base4Rot2Table, err = sys.AddTable(newSparseRotateTable(chunkWidth, 2, 0, majorityBase, "sha256_base4_rot2_table"))
	if err != nil {
		return nil, err
	}
	if strategy == UseTwoTables {
		p.base4Rot2Extr10Table, err = sys.AddTable(newSparseRotateTable(chunkWidth, 2, chunkWidth-1, majorityBase, "sha256_base4_rot2_extr10_table"))
		if err != nil {
			return nil, err
		}
		p.hasBase4Extr10 = true
	}
	p.chNormalizationTable, err = sys.AddTable(newNormalizationTable(chooseBase, cfg.chNumChunks, chooseMapping, "sha256_ch_normalization_table"))
	if err != nil {
		return nil, err
	}
	p.majNormalizationTable, err = sys.AddTable(newNormalizationTable(majorityBase, cfg.majNumChunks, majorityMapping, "sha256_maj_normalization_table"))
	if err != nil {
		return nil, err
	}
	p.chXorTable, err = sys.AddTable(newNormalizationTable(chooseBase, cfg.chNumChunks, xorMapping, "sha256_ch_xor_table"))
	if err != nil {
		return nil, err
	}
	p.majXorTable, err = sys.AddTable(newNormalizationTable(majorityBase, cfg.majNumChunks, xorMapping[:majorityBase], "sha256_maj_xor_table"))
	if err != nil {
		return nil, err
	}

	log := logger.Logger()
	log.Debug().
		Str("component", "sha256").
		Stringer("strategy", strategy).
		Int("chChunks", cfg.chNumChunks).
		Int("majChunks", cfg.majNumChunks).
		Msg("registered sha256 gadget tables")

	return p, nil
}

// MajorityStrategy returns the strategy fixed at setup time.
func (p *GadgetParams) MajorityStrategy() MajorityStrategy { return p.majorityStrategy }
