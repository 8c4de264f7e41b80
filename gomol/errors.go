package gomol

import "errors"

// Errors
var (
	ErrInvalidVertex            = errors.New("invalid vertex")
	ErrNoSuchEdge               = errors.New("no such edge")
	ErrInvalidPermutation       = errors.New("invalid permutation")
	ErrInvalidTopology          = errors.New("invalid topology")
	ErrUnsupportedConfiguration = errors.New("unsupported stereo configuration")
	ErrBadBond                  = errors.New("bad bond symbol")
	ErrBadConfiguration         = errors.New("bad stereo configuration symbol")
	ErrBadSmiles                = errors.New("bad SMILES")
	ErrBadCatalogParam          = errors.New("bad catalog param")
	ErrGraphNotFound            = errors.New("graph not found")
	ErrUnmarshal                = errors.New("unmarshal failed")
	ErrSelfLoop                 = errors.New("edge endpoints must differ")
)
