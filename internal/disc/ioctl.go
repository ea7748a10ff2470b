package disc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux CDROM ioctl numbers from <linux/cdrom.h>.
const (
	cdromReadTOCHdr   = 0x5305 // CDROMREADTOCHDR
	cdromReadTOCEntry = 0x5306 // CDROMREADTOCENTRY
	cdromDriveStatus  = 0x5326 // CDROM_DRIVE_STATUS

	cdromLeadout = 0xAA // CDROM_LEADOUT pseudo-track
	cdromLBA     = 0x01 // CDROM_LBA address format

	// ctrlDataTrack is the control-field bit marking a data track.
	ctrlDataTrack = 0x04
)

// cdromTOCHdr mirrors struct cdrom_tochdr.
type cdromTOCHdr struct {
	FirstTrack uint8
	LastTrack  uint8
}

// cdromTOCEntry mirrors struct cdrom_tocentry with the address union read as
// an LBA. The adr/ctrl bitfields share one byte: adr in the low nibble, ctrl
// in the high nibble on little-endian Linux.
type cdromTOCEntry struct {
	Track    uint8
	AdrCtrl  uint8
	Format   uint8
	_        uint8
	Addr     int32
	Datamode uint8
	_        [3]uint8
}

type unixDriveIO struct{}

func (unixDriveIO) open(device string) (int, error) {
	return unix.Open(device, unix.O_RDONLY|unix.O_NONBLOCK, 0)
}

func (unixDriveIO) close(fd int) error {
	return unix.Close(fd)
}

func (unixDriveIO) status(fd int) (DriveStatus, error) {
	r1, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), cdromDriveStatus, 0)
	if errno != 0 {
		return DriveStatusNoInfo, errno
	}
	return DriveStatus(r1), nil
}

func (unixDriveIO) tocHeader(fd int) (uint8, uint8, error) {
	var hdr cdromTOCHdr
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), cdromReadTOCHdr, uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return 0, 0, errno
	}
	return hdr.FirstTrack, hdr.LastTrack, nil
}

func (unixDriveIO) tocEntry(fd int, track uint8) (int32, uint8, error) {
	entry := cdromTOCEntry{Track: track, Format: cdromLBA}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), cdromReadTOCEntry, uintptr(unsafe.Pointer(&entry)))
	if errno != 0 {
		return 0, 0, errno
	}
	return entry.Addr, (entry.AdrCtrl >> 4) & 0x0F, nil
}
