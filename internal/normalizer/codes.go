package normalizer

import (
	"fmt"
	"strings"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
)

// AssignShortCodes gives every worker a job-unique code in slice order. A
// configured worker code is used as the base, else N plus the 1-based
// position padded to three digits. Collisions get _2, _3, ... appended.
func AssignShortCodes(workers []*types.Worker) scheduling.CodeMappings {
	m := scheduling.CodeMappings{
		NurseCodeByWorkerID: make(map[int64]string, len(workers)),
		WorkerIDByNurseCode: make(map[string]int64, len(workers)),
	}
	for idx, w := range workers {
		base := ""
		if w.WorkerCode != nil {
			base = strings.TrimSpace(*w.WorkerCode)
		}
		if base == "" {
			base = fmt.Sprintf("N%03d", idx+1)
		}
		code := makeUniqueCode(base, m.WorkerIDByNurseCode)
		m.NurseCodeByWorkerID[w.ID] = code
		m.WorkerIDByNurseCode[code] = w.ID
	}
	return m
}

func makeUniqueCode(base string, used map[string]int64) string {
	code := base
	for i := 2; ; i++ {
		if _, taken := used[code]; !taken {
			return code
		}
		code = fmt.Sprintf("%s_%d", base, i)
	}
}

// workerTags merges attributes.tags and attributes.skills, first occurrence wins.
func workerTags(attrs map[string]any) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, key := range []string{"tags", "skills"} {
		list, ok := attrs[key].([]any)
		if !ok {
			continue
		}
		for _, v := range list {
			s := fmt.Sprint(v)
			if seen[s] || strings.TrimSpace(s) == "" {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
