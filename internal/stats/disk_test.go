package stats

import "testing"

func TestParseDiskUsageJoinsInodesAndFiltersZeroSize(t *testing.T) {
	raw := "/dev/sda1|ext4|50G|30G|40%|/\n" +
		"tmpfs|tmpfs|0|0|0%|/dev/shm\n" +
		"---\n" +
		"/dev/sda1|3000000|12%|/\n"

	disks := ParseDiskUsage(raw)
	if len(disks) != 1 {
		t.Fatalf("got %d disks, want 1 (tmpfs with 0 size dropped): %+v", len(disks), disks)
	}
	d := disks[0]
	if d.Filesystem != "/dev/sda1" || d.Path != "/" || d.Total != "50G" || d.Available != "30G" {
		t.Fatalf("unexpected disk row: %+v", d)
	}
	if d.Usage != 40 {
		t.Fatalf("Usage = %d, want 40", d.Usage)
	}
	if d.InodesTotal != "3000000" || d.InodesUsage != 12 {
		t.Fatalf("unexpected inode fields: %+v", d)
	}
}

func TestParseDiskUsageMissingInodesFallsBackToNA(t *testing.T) {
	raw := "/dev/sda2|ext4|10G|5G|50%|/var\n---\n"
	disks := ParseDiskUsage(raw)
	if len(disks) != 1 {
		t.Fatalf("got %d disks, want 1", len(disks))
	}
	if disks[0].InodesTotal != "N/A" {
		t.Fatalf("InodesTotal = %q, want N/A", disks[0].InodesTotal)
	}
}

func TestParseDiskUsageNoMarkerReturnsNil(t *testing.T) {
	if got := ParseDiskUsage("/dev/sda1|ext4|50G|30G|40%|/\n"); got != nil {
		t.Fatalf("expected nil without --- marker, got %+v", got)
	}
}

func TestParseDiskUsageCapsAt20Rows(t *testing.T) {
	raw := ""
	for i := 0; i < 25; i++ {
		raw += "fs" + string(rune('a'+i)) + "|ext4|10G|5G|50%|/mnt\n"
	}
	raw += "---\n"
	disks := ParseDiskUsage(raw)
	if len(disks) != 20 {
		t.Fatalf("got %d disks, want 20 cap", len(disks))
	}
}
