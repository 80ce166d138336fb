package system

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// NetStats reads interface counters for the health log.
type NetStats struct {
	iface string
	proc  procfs.Proc
}

func NewNetStats(iface string) (*NetStats, error) {
	p, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("error: procfs could not get process: %w", err)
	}
	return &NetStats{
		iface: iface,
		proc:  p,
	}, nil
}

func (n *NetStats) Summary() (string, error) {
	netDev, err := n.proc.NetDev()
	if err != nil {
		return "", fmt.Errorf("error: failed getting netstat: %w", err)
	}

	stats, ok := netDev[n.iface]
	if !ok {
		return "", fmt.Errorf("error: failed getting %s stats: not found", n.iface)
	}
	return FormatNetDev(stats), nil
}

func FormatNetDev(stats procfs.NetDevLine) string {
	return fmt.Sprintf("%s RxPkt:%d | RxErr:%d | RxDrop: %d | TxPkt:%d | TxErr:%d | TxDrop: %d",
		stats.Name,
		stats.RxPackets,
		stats.RxErrors,
		stats.RxDropped,
		stats.TxPackets,
		stats.TxErrors,
		stats.TxDropped,
	)
}
