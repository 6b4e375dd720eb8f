package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Препроцессор
	PPInfo              Code = 1000
	PPUnknownProtocol   Code = 1001
	PPLoadError         Code = 1002
	PPInvalidReference  Code = 1003
	PPCyclicInclude     Code = 1004
	PPDuplicateProtocol Code = 1005
	PPIncludeDepth      Code = 1006

	// Трансляция логов компилятора
	TRInfo                  Code = 2000
	TRTranslationIncomplete Code = 2001
	TRUnlocated             Code = 2002

	// Диагностики внешнего компилятора
	CmpInfo    Code = 3000
	CmpError   Code = 3001
	CmpWarning Code = 3002
	CmpNote    Code = 3003
	CmpFailed  Code = 3004

	IOLoadFileError Code = 4001

	// Манифест и программы
	ProjInfo           Code = 5000
	ProjManifest       Code = 5001
	ProjUnknownProgram Code = 5002
	ProjNoStages       Code = 5003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		PPInfo:                  "Preprocessor information",
		PPUnknownProtocol:       "Unknown protocol",
		PPLoadError:             "Failed to load included resource",
		PPInvalidReference:      "Invalid include reference",
		PPCyclicInclude:         "Cyclic include",
		PPDuplicateProtocol:     "Protocol is already registered",
		PPIncludeDepth:          "Include depth limit exceeded",
		TRInfo:                  "Translation information",
		TRTranslationIncomplete: "Diagnostic line outside merged output",
		TRUnlocated:             "Compiler message without location",
		CmpInfo:                 "Compiler information",
		CmpError:                "Compiler error",
		CmpWarning:              "Compiler warning",
		CmpNote:                 "Compiler note",
		CmpFailed:               "Compiler failed",
		IOLoadFileError:         "I/O load file error",
		ProjInfo:                "Project information",
		ProjManifest:            "Invalid manifest",
		ProjUnknownProgram:      "Unknown program",
		ProjNoStages:            "Program has no stages",
		ObsInfo:                 "Observability information",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
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
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
