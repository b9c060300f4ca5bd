package procguard

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// systemLister enumerates processes via gopsutil. Per-process lookup errors
// are expected (short-lived processes, permission boundaries) and skipped.
type systemLister struct{}

func newSystemLister() Lister {
	return systemLister{}
}

func (systemLister) Processes(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		info := ProcessInfo{}
		if name, err := p.NameWithContext(ctx); err == nil {
			info.Name = name
		}
		if exe, err := p.ExeWithContext(ctx); err == nil {
			info.Exe = exe
		}
		if info.Name == "" && info.Exe == "" {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}
