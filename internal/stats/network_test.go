package stats

import "testing"

func TestParseNetworkStatsSkipsMalformedLines(t *testing.T) {
	raw := "eth0,100,200,1,2\nbad-line\neth1,0,0,0,0\n"
	ifaces := ParseNetworkStats(raw)
	if len(ifaces) != 2 {
		t.Fatalf("got %d interfaces, want 2: %+v", len(ifaces), ifaces)
	}
	if ifaces[0].Name != "eth0" || ifaces[0].RxBytes != 100 || ifaces[0].TxPackets != 2 {
		t.Fatalf("unexpected first interface: %+v", ifaces[0])
	}
}

func TestParseNetworkBandwidthComputesDelta(t *testing.T) {
	raw := "eth0,1000,500\n" +
		"eth0,1500,900\n"
	bw := ParseNetworkBandwidth(raw)
	if len(bw) != 1 {
		t.Fatalf("got %d bandwidth rows, want 1: %+v", len(bw), bw)
	}
	if bw[0].Interface != "eth0" || bw[0].RxBytesPerSec != 500 || bw[0].TxBytesPerSec != 400 {
		t.Fatalf("unexpected bandwidth: %+v", bw[0])
	}
}

func TestParseNetworkBandwidthEmptyInput(t *testing.T) {
	if bw := ParseNetworkBandwidth(""); bw != nil {
		t.Fatalf("expected nil for empty input, got %+v", bw)
	}
}

func TestParseNetworkLatency(t *testing.T) {
	if v, ok := ParseNetworkLatency("23.4"); !ok || v != 23.4 {
		t.Fatalf("ParseNetworkLatency(23.4) = %v,%v", v, ok)
	}
	if _, ok := ParseNetworkLatency("timeout"); ok {
		t.Fatal("expected ok=false for timeout")
	}
	if _, ok := ParseNetworkLatency(""); ok {
		t.Fatal("expected ok=false for empty output")
	}
}

func TestParseNetworkSocketStats(t *testing.T) {
	raw := "Total: 120\nTCP:   80 (estab 30, closed 10, timewait 5)\nUDP:   40\n---SYNRECV---\n3\n"
	got := ParseNetworkSocketStats(raw)
	want := NetworkSocketStats{Total: 120, TCPTotal: 80, TCPEstablished: 30, TCPTimewait: 5, UDPTotal: 40, TCPSynRecv: 3}
	if got != want {
		t.Fatalf("ParseNetworkSocketStats = %+v, want %+v", got, want)
	}
}
