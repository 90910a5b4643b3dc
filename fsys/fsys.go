// Package fsys serves documents over 9P. The tree has an index of the
// served documents and one directory per document:
//
//	/index
//	/new/...
//	/<id>/addr
//	/<id>/body
//	/<id>/chain
//	/<id>/ctl
//	/<id>/data
package fsys

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"9fans.net/go/plan9"
	"github.com/rjkroege/textcore/file"
	"github.com/rjkroege/textcore/text"
)

// Errors returned by file server.
var (
	ErrPermission  = os.ErrPermission
	ErrNotExist    = os.ErrNotExist
	ErrNotDir      = errors.New("not a directory")
	ErrFidNotInUse = errors.New("fid not in use")
)

const (
	Qdir = iota
	Qindex
	Qnew
	QDaddr
	QDbody
	QDchain
	QDctl
	QDdata
)

// DirTab describes one file of the tree.
type DirTab struct {
	name string
	t    uint8
	qid  uint64
	perm plan9.Perm
}

var dirtab = []*DirTab{
	{".", plan9.QTDIR, Qdir, 0500 | plan9.DMDIR},
	{"index", plan9.QTFILE, Qindex, 0400},
	{"new", plan9.QTDIR, Qnew, 0500 | plan9.DMDIR},
}

var dirtabd = []*DirTab{
	{".", plan9.QTDIR, Qdir, 0500 | plan9.DMDIR},
	{"addr", plan9.QTFILE, QDaddr, 0600},
	{"body", plan9.QTAPPEND, QDbody, 0600 | plan9.DMAPPEND},
	{"chain", plan9.QTFILE, QDchain, 0400},
	{"ctl", plan9.QTFILE, QDctl, 0600},
	{"data", plan9.QTFILE, QDdata, 0600},
}

// docDirTab returns the DirTab entry for the directory of document id.
func docDirTab(id int) *DirTab {
	return &DirTab{
		name: strconv.Itoa(id),
		t:    plan9.QTDIR,
		qid:  Qdir,
		perm: plan9.DMDIR | 0700,
	}
}

func docID(q plan9.Qid) int {
	return int((q.Path >> 8) & 0xFFFFFF)
}

func fileType(q plan9.Qid) uint64 {
	return q.Path & 0xff
}

func qidPath(id int, q uint64) uint64 {
	return uint64(id)<<8 | q
}

// Fid is the server side of a 9P fid.
type Fid struct {
	fid  uint32
	busy bool
	open bool
	qid  plan9.Qid
	dir  *DirTab
	doc  *Doc
}

type fsfunc func(*plan9.Fcall, *Fid)

// Server is a 9P server for a set of documents. It serves one
// connection and handles one request at a time.
type Server struct {
	conn        io.ReadWriteCloser
	docs        *Docs
	fids        map[uint32]*Fid
	fcall       []fsfunc
	closing     bool
	username    string
	messagesize int

	saveMethod file.SaveMethod
	textOpts   []text.Option
	clock      func() int64
}

// Option configures a Server.
type Option func(*Server)

// WithSaveMethod sets how the save control message writes files.
func WithSaveMethod(m file.SaveMethod) Option {
	return func(fs *Server) { fs.saveMethod = m }
}

// WithTextOptions sets the options of documents created through new.
func WithTextOptions(opts ...text.Option) Option {
	return func(fs *Server) { fs.textOpts = opts }
}

// NewServer returns a server for docs that talks 9P over conn.
func NewServer(conn io.ReadWriteCloser, docs *Docs, opts ...Option) *Server {
	fs := &Server{
		conn:        conn,
		docs:        docs,
		fids:        make(map[uint32]*Fid),
		username:    getuser(),
		messagesize: 8192, // until Tversion
		clock:       func() int64 { return time.Now().Unix() },
	}
	for _, o := range opts {
		o(fs)
	}
	fs.initfcall()
	return fs
}

func (fs *Server) initfcall() {
	fs.fcall = make([]fsfunc, plan9.Tmax)
	fs.fcall[plan9.Tflush] = fs.flush
	fs.fcall[plan9.Tversion] = fs.version
	fs.fcall[plan9.Tauth] = fs.auth
	fs.fcall[plan9.Tattach] = fs.attach
	fs.fcall[plan9.Twalk] = fs.walk
	fs.fcall[plan9.Topen] = fs.open
	fs.fcall[plan9.Tcreate] = fs.create
	fs.fcall[plan9.Tread] = fs.read
	fs.fcall[plan9.Twrite] = fs.write
	fs.fcall[plan9.Tclunk] = fs.clunk
	fs.fcall[plan9.Tremove] = fs.remove
	fs.fcall[plan9.Tstat] = fs.stat
	fs.fcall[plan9.Twstat] = fs.wstat
}

// Serve handles requests until the connection fails or is closed.
func (fs *Server) Serve() error {
	for {
		fc, err := plan9.ReadFcall(fs.conn)
		if err != nil || fc == nil {
			if fs.closing || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fsys: %w", err)
		}
		fs.dispatch(fc)
	}
}

// Close closes the connection, making Serve return.
func (fs *Server) Close() error {
	fs.closing = true
	return fs.conn.Close()
}

func (fs *Server) dispatch(x *plan9.Fcall) {
	var f *Fid
	switch x.Type {
	case plan9.Tversion, plan9.Tauth, plan9.Tflush:
	case plan9.Tattach:
		f = fs.newfid(x.Fid)
	default:
		f = fs.newfid(x.Fid)
		if !f.busy {
			fs.respond(x, nil, ErrFidNotInUse)
			return
		}
	}
	if int(x.Type) >= len(fs.fcall) || fs.fcall[x.Type] == nil {
		fs.respond(x, nil, fmt.Errorf("bad fcall type %d", x.Type))
		return
	}
	fs.fcall[x.Type](x, f)
}

func (fs *Server) respond(x *plan9.Fcall, t *plan9.Fcall, err error) {
	if t == nil {
		t = &plan9.Fcall{}
	}
	if err != nil {
		t.Type = plan9.Rerror
		t.Ename = err.Error()
	} else {
		t.Type = x.Type + 1
	}
	t.Fid = x.Fid
	t.Tag = x.Tag
	if err := plan9.WriteFcall(fs.conn, t); err != nil {
		log.Printf("write error in respond: %v", err)
	}
}

func (fs *Server) version(x *plan9.Fcall, f *Fid) {
	var t plan9.Fcall
	fs.messagesize = int(x.Msize)
	t.Msize = x.Msize
	if x.Version != "9P2000" {
		fs.respond(x, &t, fmt.Errorf("unrecognized 9P version"))
		return
	}
	t.Version = "9P2000"
	fs.respond(x, &t, nil)
}

func (fs *Server) auth(x *plan9.Fcall, f *Fid) {
	fs.respond(x, nil, fmt.Errorf("textfs: authentication not required"))
}

// Requests are answered in order so there is never one to flush.
func (fs *Server) flush(x *plan9.Fcall, f *Fid) {
	fs.respond(x, nil, nil)
}

func (fs *Server) attach(x *plan9.Fcall, f *Fid) {
	if x.Uname != fs.username {
		log.Printf("attach from uname %q does not match %q but allowing anyway",
			x.Uname, fs.username)
	}
	f.busy = true
	f.open = false
	f.qid = plan9.Qid{Path: Qdir, Type: plan9.QTDIR}
	f.dir = dirtab[0]
	f.doc = nil
	fs.respond(x, &plan9.Fcall{Qid: f.qid}, nil)
}

func (fs *Server) walk(x *plan9.Fcall, f *Fid) {
	var t plan9.Fcall

	if f.open {
		fs.respond(x, &t, fmt.Errorf("walk of open file"))
		return
	}
	var nf *Fid
	if x.Fid != x.Newfid { // clone fid
		nf = fs.newfid(x.Newfid)
		if nf.busy {
			fs.respond(x, &t, fmt.Errorf("newfid already in use"))
			return
		}
		nf.busy = true
		nf.open = false
		nf.dir = f.dir
		nf.qid = f.qid
		nf.doc = f.doc
		f = nf
	}

	var err error
	var created *Doc
	wf := &Fid{qid: f.qid, dir: f.dir, doc: f.doc}
	for i, wname := range x.Wname {
		if i == plan9.MAXWELEM {
			err = fmt.Errorf("name too long")
			break
		}
		var found bool
		found, err = fs.walk1(wf, wname)
		if err != nil {
			break
		}
		if !found {
			if i == 0 {
				err = ErrNotExist
			}
			break
		}
		if wname == "new" {
			created = wf.doc
		}
		t.Wqid = append(t.Wqid, wf.qid)
	}

	if err != nil || len(t.Wqid) < len(x.Wname) {
		if nf != nil {
			nf.busy = false
		}
		if created != nil {
			fs.docs.Remove(created)
			log.Printf("dropped document %d after failed walk", created.ID)
		}
	} else {
		f.dir = wf.dir
		f.qid = wf.qid
		f.doc = wf.doc
	}
	fs.respond(x, &t, err)
}

// walk1 walks f to path name element wname. Found is set to true iff
// wname was found.
func (fs *Server) walk1(f *Fid, wname string) (found bool, err error) {
	if f.qid.Type&plan9.QTDIR == 0 {
		return false, ErrNotDir
	}

	if wname == ".." {
		f.doc = nil
		f.dir = dirtab[0]
		f.qid = plan9.Qid{Path: Qdir, Type: plan9.QTDIR}
		return true, nil
	}

	if id, err := strconv.ParseInt(wname, 10, 32); err == nil {
		if f.doc != nil { // name has form 27/23
			return false, nil
		}
		d := fs.docs.Lookup(int(id))
		if d == nil {
			return false, nil
		}
		fs.enterDoc(f, d)
		return true, nil
	}

	if wname == "new" && f.doc == nil {
		t, disk, err := file.Load("", file.LoadAuto, fs.textOpts...)
		if err != nil {
			return false, err
		}
		d := fs.docs.Add(t, disk)
		log.Printf("created document %d", d.ID)
		fs.enterDoc(f, d)
		return true, nil
	}

	id := docID(f.qid)
	dt := dirtab
	if f.doc != nil {
		dt = dirtabd
	}
	for _, de := range dt[1:] {
		if wname == de.name && de.qid != Qnew {
			f.dir = de
			f.qid = plan9.Qid{Path: qidPath(id, de.qid), Type: de.t}
			return true, nil
		}
	}
	return false, nil
}

func (fs *Server) enterDoc(f *Fid, d *Doc) {
	f.doc = d
	f.dir = dirtabd[0]
	f.qid = plan9.Qid{Path: qidPath(d.ID, Qdir), Type: plan9.QTDIR}
}

func (fs *Server) open(x *plan9.Fcall, f *Fid) {
	var m plan9.Perm
	// can't truncate anything, so just disregard
	mode := x.Mode &^ uint8(plan9.OTRUNC|plan9.OCEXEC)
	// can't execute or remove anything
	if mode == plan9.OEXEC || mode&plan9.ORCLOSE != 0 {
		fs.respond(x, nil, ErrPermission)
		return
	}
	switch mode {
	case plan9.OREAD:
		m = 0400
	case plan9.OWRITE:
		m = 0200
	case plan9.ORDWR:
		m = 0600
	default:
		fs.respond(x, nil, ErrPermission)
		return
	}
	if (f.dir.perm&^(plan9.DMDIR|plan9.DMAPPEND))&m != m {
		fs.respond(x, nil, ErrPermission)
		return
	}
	f.open = true
	fs.respond(x, &plan9.Fcall{
		Qid:    f.qid,
		Iounit: uint32(fs.messagesize - plan9.IOHDRSZ),
	}, nil)
}

func (fs *Server) create(x *plan9.Fcall, f *Fid) {
	fs.respond(x, nil, ErrPermission)
}

func (fs *Server) read(x *plan9.Fcall, f *Fid) {
	var t plan9.Fcall
	if f.qid.Type&plan9.QTDIR != 0 {
		clock := fs.clock()
		id := docID(f.qid)
		dt := dirtab
		var docs []*Doc
		if f.doc != nil {
			dt = dirtabd
		} else {
			docs = fs.docs.All()
		}
		var dirs []*plan9.Dir
		for _, de := range dt[1:] { // Skip '.'
			dirs = append(dirs, de.Dir(id, fs.username, clock))
		}
		for _, d := range docs {
			dirs = append(dirs, docDirTab(d.ID).Dir(d.ID, fs.username, clock))
		}
		readDir(&t, x, dirs)
		fs.respond(x, &t, nil)
		return
	}

	if fileType(f.qid) == Qindex {
		err := readAt(&t, x, strings.NewReader(fs.docs.index()), int64(x.Offset))
		fs.respond(x, &t, err)
		return
	}

	d := f.doc
	d.Lock()
	defer d.Unlock()
	var err error
	switch fileType(f.qid) {
	case QDaddr:
		err = readAt(&t, x, strings.NewReader(fmt.Sprintf("%d %d\n", d.q0, d.q1)), int64(x.Offset))
	case QDbody:
		err = readAt(&t, x, d.Text, int64(x.Offset))
	case QDchain:
		err = readAt(&t, x, strings.NewReader(d.Text.Dump()), int64(x.Offset))
	case QDctl:
		err = readAt(&t, x, strings.NewReader(d.status()), int64(x.Offset))
	case QDdata:
		if err = readAt(&t, x, d.Text, int64(d.q0)); err == nil {
			d.setAddr(d.q0+len(t.Data), d.q1)
		}
	default:
		err = fmt.Errorf("unknown qid %d in read", fileType(f.qid))
	}
	fs.respond(x, &t, err)
}

func (fs *Server) write(x *plan9.Fcall, f *Fid) {
	d := f.doc
	if d == nil {
		fs.respond(x, nil, ErrPermission)
		return
	}
	d.Lock()
	defer d.Unlock()
	var err error
	switch fileType(f.qid) {
	case QDaddr:
		err = d.parseAddr(string(x.Data))
	case QDbody:
		err = d.Text.Insert(d.Text.Size(), x.Data)
	case QDctl:
		for _, cmd := range strings.Split(string(x.Data), "\n") {
			if err = d.ctl(cmd, fs.saveMethod); err != nil {
				break
			}
		}
	case QDdata:
		err = d.replace(x.Data)
	default:
		err = ErrPermission
	}
	if err != nil {
		fs.respond(x, nil, err)
		return
	}
	fs.respond(x, &plan9.Fcall{Count: uint32(len(x.Data))}, nil)
}

func (fs *Server) clunk(x *plan9.Fcall, f *Fid) {
	f.busy = false
	f.open = false
	f.doc = nil
	fs.respond(x, nil, nil)
}

func (fs *Server) remove(x *plan9.Fcall, f *Fid) {
	fs.respond(x, nil, ErrPermission)
}

func (fs *Server) stat(x *plan9.Fcall, f *Fid) {
	var t plan9.Fcall

	dt := f.dir
	if f.doc != nil && fileType(f.qid) == Qdir {
		dt = docDirTab(f.doc.ID)
	}
	t.Stat = make([]byte, fs.messagesize-plan9.IOHDRSZ)
	b, _ := dt.Dir(docID(f.qid), fs.username, fs.clock()).Bytes()
	if len(b) > len(t.Stat) {
		// don't send partial directory entry
		fs.respond(x, nil, fmt.Errorf("msize too small"))
		return
	}
	n := copy(t.Stat, b)
	t.Stat = t.Stat[:n]
	fs.respond(x, &t, nil)
}

func (fs *Server) wstat(x *plan9.Fcall, f *Fid) {
	fs.respond(x, nil, ErrPermission)
}

func (fs *Server) newfid(fid uint32) *Fid {
	ff, ok := fs.fids[fid]
	if !ok {
		ff = &Fid{fid: fid}
		fs.fids[fid] = ff
	}
	return ff
}

// Dir converts DirTab to plan9.Dir. The given document id is used to
// compute Qid.Path, username/group is set to user, and Atime/Mtime is
// set to clock.
func (dt *DirTab) Dir(id int, user string, clock int64) *plan9.Dir {
	return &plan9.Dir{
		Qid: plan9.Qid{
			Path: qidPath(id, dt.qid),
			Type: dt.t,
		},
		Mode:  dt.perm,
		Atime: uint32(clock),
		Mtime: uint32(clock),
		Name:  dt.name,
		Uid:   user,
		Gid:   user,
		Muid:  user,
	}
}

func getuser() string {
	user, err := user.Current()
	if err != nil {
		return "none"
	}
	return user.Username
}
