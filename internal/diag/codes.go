package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// SSA-преобразование
	SSAInfo                    Code = 1000
	SSAUnresolvedSymbol        Code = 1001
	SSAMissingReservedField    Code = 1002
	SSAUnsupportedAssignTarget Code = 1003
	SSANonConstantLoopBound    Code = 1004
	SSALoopBoundTooLarge       Code = 1005
	SSAScopeImbalance          Code = 1006
	SSAInvariantViolation      Code = 1007

	// Ввод-вывод деревьев и кеша
	IOLoadFileError  Code = 4001
	IODecodeError    Code = 4002
	IOWriteFileError Code = 4003
	IOCacheError     Code = 4004

	// Манифест проекта
	ProjInfo                Code = 5000
	ProjManifestNotFound    Code = 5001
	ProjManifestInvalid     Code = 5002
	ProjMissingImport       Code = 5003
	ProjDuplicateImport     Code = 5004
	ProjUnknownOutputFormat Code = 5005

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                "Unknown error",
		SSAInfo:                    "SSA information",
		SSAUnresolvedSymbol:        "Unresolved symbol",
		SSAMissingReservedField:    "Record is missing a reserved field",
		SSAUnsupportedAssignTarget: "Unsupported assignment target",
		SSANonConstantLoopBound:    "Loop bound is not a constant",
		SSALoopBoundTooLarge:       "Loop iteration count exceeds unroll limit",
		SSAScopeImbalance:          "Scope stack imbalance",
		SSAInvariantViolation:      "SSA invariant violated",
		IOLoadFileError:            "I/O load file error",
		IODecodeError:              "Tree decode error",
		IOWriteFileError:           "I/O write file error",
		IOCacheError:               "Cache error",
		ProjInfo:                   "Project information",
		ProjManifestNotFound:       "Project manifest not found",
		ProjManifestInvalid:        "Invalid project manifest",
		ProjMissingImport:          "Missing import tree",
		ProjDuplicateImport:        "Duplicate import",
		ProjUnknownOutputFormat:    "Unknown output format",
		ObsInfo:                    "Observability information",
		ObsTimings:                 "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SSA%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// MarshalText renders the stable ID, e.g. "SSA1001".
func (c Code) MarshalText() ([]byte, error) { return []byte(c.ID()), nil }
