package simvm

import (
	"fmt"
	"sync"
)

// inode is a minimal in-memory stand-in for the source's on-disk
// inode, tracked only well enough to exercise reference counting.
type inode struct {
	path string
	refs int
}

// file is a minimal in-memory open-file-table entry.
type file struct {
	ino  *inode
	refs int
}

// fs is a toy filesystem collaborator: no blocks, no log, just a
// path-keyed inode table with BeginOp/EndOp bracketing (permanently
// no-ops here, since there is no on-disk log to batch transactions
// against) and reference-counted dup/close/put.
type fs struct {
	mu     sync.Mutex
	inodes map[string]*inode
}

func newFS() *fs {
	return &fs{inodes: map[string]*inode{"/": {path: "/", refs: 1}}}
}

func (f *fs) FsInit() {}

func (f *fs) BeginOp() {}

func (f *fs) EndOp() {}

func (f *fs) Namei(path string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ip, ok := f.inodes[path]; ok {
		ip.refs++
		return ip, nil
	}
	ip := &inode{path: path, refs: 1}
	f.inodes[path] = ip
	return ip, nil
}

func (f *fs) Idup(i any) any {
	if i == nil {
		return nil
	}
	ip := i.(*inode)
	f.mu.Lock()
	ip.refs++
	f.mu.Unlock()
	return ip
}

func (f *fs) Iput(i any) {
	if i == nil {
		return
	}
	ip := i.(*inode)
	f.mu.Lock()
	defer f.mu.Unlock()
	ip.refs--
	if ip.refs <= 0 && ip.path != "/" {
		delete(f.inodes, ip.path)
	}
}

func (f *fs) FileDup(ff any) any {
	if ff == nil {
		return nil
	}
	fl := ff.(*file)
	f.mu.Lock()
	fl.refs++
	f.mu.Unlock()
	return fl
}

func (f *fs) FileClose(ff any) {
	if ff == nil {
		return
	}
	fl := ff.(*file)
	f.mu.Lock()
	fl.refs--
	closed := fl.refs <= 0
	f.mu.Unlock()
	if closed {
		f.Iput(fl.ino)
	}
}

// String renders the inode table, useful from a kshell debug command.
func (f *fs) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("%d inodes", len(f.inodes))
}
