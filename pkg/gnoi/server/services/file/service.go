package file

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hdwhdw/webpath/pkg/security/pathvalidator"
	"github.com/hdwhdw/webpath/pkg/webpath"
	"github.com/openconfig/gnoi/common"
	"github.com/openconfig/gnoi/file"
	"github.com/openconfig/gnoi/types"
	"github.com/spf13/afero"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"
)

// chunkSize is the maximum payload of a single Get response
const chunkSize = 64 * 1024

// HTTPClient interface for mocking in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service implements the gNOI File service. Every remote path it accepts is
// web-relative and resolved below the translator's root.
type Service struct {
	file.UnimplementedFileServer
	httpClient HTTPClient
	translator *webpath.Translator
	fs         afero.Fs
}

// NewService creates a new File service
func NewService(translator *webpath.Translator) *Service {
	return &Service{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		translator: translator,
		fs:         translator.Fs(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing)
func (s *Service) SetHTTPClient(client HTTPClient) {
	s.httpClient = client
}

// resolve translates a remote web path to a filesystem path and applies the
// network path policy
func (s *Service) resolve(field, webPath string) (string, error) {
	p, err := s.translator.ToFileSystemPath(webPath)
	if err != nil {
		if errors.Is(err, webpath.ErrInvalidArgument) {
			return "", status.Errorf(codes.InvalidArgument, "%s is required: %v", field, err)
		}
		return "", status.Errorf(codes.Internal, "failed to translate %s: %v", field, err)
	}

	if err := pathvalidator.ValidateWebPath(webPath); err != nil {
		return "", status.Errorf(codes.PermissionDenied, "invalid %s: %v", field, err)
	}
	return p, nil
}

// Stat implements the gNOI File.Stat RPC
func (s *Service) Stat(ctx context.Context, req *file.StatRequest) (resp *file.StatResponse, err error) {
	defer func() { observe("Stat", err) }()

	klog.InfoS("Received Stat request", "path", req.GetPath())

	p, err := s.resolve("path", req.GetPath())
	if err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, fsError(err, req.GetPath())
	}

	if !info.IsDir() {
		st, err := s.fileStat(req.GetPath(), info)
		if err != nil {
			return nil, err
		}
		return &file.StatResponse{Stats: []*file.StatInfo{st}}, nil
	}

	entries, err := afero.ReadDir(s.fs, p)
	if err != nil {
		return nil, fsError(err, req.GetPath())
	}

	base := strings.TrimSuffix(req.GetPath(), "/")
	resp = &file.StatResponse{}
	for _, entry := range entries {
		child := base + "/" + entry.Name()
		var st *file.StatInfo
		if entry.IsDir() {
			st, err = s.dirStat(child, entry)
		} else {
			st, err = s.fileStat(child, entry)
		}
		if err != nil {
			return nil, err
		}
		resp.Stats = append(resp.Stats, st)
	}

	return resp, nil
}

func (s *Service) fileStat(webPath string, info os.FileInfo) (*file.StatInfo, error) {
	f, err := s.translator.GetFile(webPath)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid path: %v", err)
	}
	name, err := s.translator.FileToWebRelativePath(f)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to translate %s: %v", f.FullName(), err)
	}
	return statInfo(name, info), nil
}

func (s *Service) dirStat(webPath string, info os.FileInfo) (*file.StatInfo, error) {
	d, err := s.translator.GetDirectory(webPath)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid path: %v", err)
	}
	name, err := s.translator.DirectoryToWebRelativePath(d)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to translate %s: %v", d.FullName(), err)
	}
	return statInfo(name, info), nil
}

func statInfo(webPath string, info os.FileInfo) *file.StatInfo {
	return &file.StatInfo{
		Path:         webPath,
		LastModified: uint64(info.ModTime().UnixNano()),
		Permissions:  toOctalDigits(info.Mode().Perm()),
		Size:         uint64(info.Size()),
	}
}

// Get implements the gNOI File.Get RPC
func (s *Service) Get(req *file.GetRequest, stream file.File_GetServer) (err error) {
	defer func() { observe("Get", err) }()

	klog.InfoS("Received Get request", "remoteFile", req.GetRemoteFile())

	if _, err := s.resolve("remote_file", req.GetRemoteFile()); err != nil {
		return err
	}

	f, err := s.translator.GetFile(req.GetRemoteFile())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid remote_file: %v", err)
	}
	if err := s.requireRegularFile(f, req.GetRemoteFile()); err != nil {
		return err
	}

	src, err := s.fs.Open(f.FullName())
	if err != nil {
		return fsError(err, req.GetRemoteFile())
	}
	defer src.Close()

	h := md5.New()
	var sent int64
	for {
		// A sent message must not be modified, so each chunk gets its own buffer
		buf := make([]byte, chunkSize)
		n, readErr := src.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			if err := stream.Send(&file.GetResponse{
				Response: &file.GetResponse_Contents{Contents: buf[:n]},
			}); err != nil {
				return err
			}
			sent += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return status.Errorf(codes.Internal, "failed to read %s: %v", req.GetRemoteFile(), readErr)
		}
	}

	if err := stream.Send(&file.GetResponse{
		Response: &file.GetResponse_Hash{Hash: md5Hash(h)},
	}); err != nil {
		return err
	}

	klog.InfoS("Get completed successfully",
		"remoteFile", req.GetRemoteFile(),
		"path", f.FullName(),
		"size", sent)

	return nil
}

// Put implements the gNOI File.Put RPC. The stream must start with an open
// message and end with an MD5 hash of the contents.
func (s *Service) Put(stream file.File_PutServer) (err error) {
	defer func() { observe("Put", err) }()

	req, err := stream.Recv()
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "failed to receive open message: %v", err)
	}

	open := req.GetOpen()
	if open == nil {
		return status.Error(codes.InvalidArgument, "first message must be open")
	}

	klog.InfoS("Received Put request",
		"remoteFile", open.GetRemoteFile(),
		"permissions", open.GetPermissions())

	if _, err := s.resolve("remote_file", open.GetRemoteFile()); err != nil {
		return err
	}

	perm := os.FileMode(0644)
	if open.GetPermissions() != 0 {
		perm, err = fromOctalDigits(open.GetPermissions())
		if err != nil {
			return status.Errorf(codes.InvalidArgument, "invalid permissions: %v", err)
		}
	}

	dest, err := s.translator.GetFile(open.GetRemoteFile())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid remote_file: %v", err)
	}
	if err := requireNotDirectory(dest, open.GetRemoteFile()); err != nil {
		return err
	}

	tmp, err := s.createTemp(dest, ".put-*")
	if err != nil {
		return status.Errorf(codes.Internal, "failed to create temporary file: %v", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.discardTemp(tmp)
		}
	}()

	h := md5.New()
	w := io.MultiWriter(tmp, h)
	var written int64

	for hashed := false; !hashed; {
		req, err := stream.Recv()
		if err == io.EOF {
			return status.Error(codes.InvalidArgument, "stream closed before hash was received")
		}
		if err != nil {
			return err
		}

		switch r := req.GetRequest().(type) {
		case *file.PutRequest_Contents:
			n, err := w.Write(r.Contents)
			if err != nil {
				return status.Errorf(codes.Internal, "failed to write file: %v", err)
			}
			written += int64(n)
		case *file.PutRequest_Hash:
			if err := verifyHash(r.Hash, h); err != nil {
				return err
			}
			hashed = true
		default:
			return status.Error(codes.InvalidArgument, "unexpected open message after first request")
		}
	}

	if err := tmp.Close(); err != nil {
		return status.Errorf(codes.Internal, "failed to close file: %v", err)
	}
	if err := s.fs.Chmod(tmp.Name(), perm); err != nil {
		return status.Errorf(codes.Internal, "failed to set permissions: %v", err)
	}
	if err := s.fs.Rename(tmp.Name(), dest.FullName()); err != nil {
		return status.Errorf(codes.Internal, "failed to move file into place: %v", err)
	}
	committed = true

	klog.InfoS("Put completed successfully",
		"remoteFile", open.GetRemoteFile(),
		"path", dest.FullName(),
		"size", written)

	return stream.SendAndClose(&file.PutResponse{})
}

// Remove implements the gNOI File.Remove RPC. Only files can be removed.
func (s *Service) Remove(ctx context.Context, req *file.RemoveRequest) (resp *file.RemoveResponse, err error) {
	defer func() { observe("Remove", err) }()

	klog.InfoS("Received Remove request", "remoteFile", req.GetRemoteFile())

	if _, err := s.resolve("remote_file", req.GetRemoteFile()); err != nil {
		return nil, err
	}

	f, err := s.translator.GetFile(req.GetRemoteFile())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid remote_file: %v", err)
	}
	if err := s.requireRegularFile(f, req.GetRemoteFile()); err != nil {
		return nil, err
	}

	if err := s.fs.Remove(f.FullName()); err != nil {
		return nil, fsError(err, req.GetRemoteFile())
	}

	klog.InfoS("Removed file", "remoteFile", req.GetRemoteFile(), "path", f.FullName())
	return &file.RemoveResponse{}, nil
}

// TransferToRemote implements the gNOI File.TransferToRemote RPC
func (s *Service) TransferToRemote(ctx context.Context, req *file.TransferToRemoteRequest) (resp *file.TransferToRemoteResponse, err error) {
	defer func() { observe("TransferToRemote", err) }()

	klog.InfoS("Received TransferToRemote request",
		"localPath", req.GetLocalPath(),
		"remoteURL", req.GetRemoteDownload().GetPath())

	// Validate request
	if req.RemoteDownload == nil {
		return nil, status.Error(codes.InvalidArgument, "remote_download is required")
	}

	if req.RemoteDownload.Protocol != common.RemoteDownload_HTTP {
		return nil, status.Errorf(codes.Unimplemented, "only HTTP protocol is supported, got %v", req.RemoteDownload.Protocol)
	}

	remoteURL := req.RemoteDownload.GetPath()
	if remoteURL == "" {
		return nil, status.Error(codes.InvalidArgument, "remote URL path is required")
	}

	if _, err := s.resolve("local_path", req.GetLocalPath()); err != nil {
		return nil, err
	}

	dest, err := s.translator.GetFile(req.GetLocalPath())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid local_path: %v", err)
	}
	if err := requireNotDirectory(dest, req.GetLocalPath()); err != nil {
		return nil, err
	}

	// Download file
	sum, err := s.downloadFile(ctx, remoteURL, dest)
	if err != nil {
		klog.ErrorS(err, "Failed to download file",
			"remoteURL", remoteURL,
			"localPath", req.GetLocalPath(),
			"path", dest.FullName())
		return nil, status.Errorf(codes.Internal, "download failed: %v", err)
	}

	klog.InfoS("File transfer completed successfully",
		"remoteURL", remoteURL,
		"localPath", req.GetLocalPath(),
		"path", dest.FullName())

	return &file.TransferToRemoteResponse{Hash: sum}, nil
}

// downloadFile downloads url into dest and returns its MD5 hash. The body is
// staged in a temporary file next to dest, so a failed download leaves any
// existing file untouched.
func (s *Service) downloadFile(ctx context.Context, url string, dest *webpath.File) (*types.HashType, error) {
	// Create HTTP request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Execute request
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check response status
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %s", resp.Status)
	}

	tmp, err := s.createTemp(dest, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.discardTemp(tmp)
		}
	}()

	// Copy data
	h := md5.New()
	written, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	if err := s.fs.Chmod(tmp.Name(), 0644); err != nil {
		return nil, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := s.fs.Rename(tmp.Name(), dest.FullName()); err != nil {
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}
	committed = true

	klog.InfoS("Downloaded file successfully",
		"url", url,
		"path", dest.FullName(),
		"size", written)

	return md5Hash(h), nil
}

// createTemp creates a temporary file in dest's directory, creating the
// directory first when needed
func (s *Service) createTemp(dest *webpath.File, pattern string) (afero.File, error) {
	destDir := filepath.Dir(dest.FullName())
	if err := s.fs.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}
	return afero.TempFile(s.fs, destDir, pattern)
}

func (s *Service) discardTemp(tmp afero.File) {
	tmp.Close()
	if err := s.fs.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
		klog.ErrorS(err, "Failed to remove temporary file", "path", tmp.Name())
	}
}

// requireRegularFile maps a missing file or a directory to a status error
func (s *Service) requireRegularFile(f *webpath.File, webPath string) error {
	info, err := f.Stat()
	if err != nil {
		return fsError(err, webPath)
	}
	if info.IsDir() {
		return status.Errorf(codes.InvalidArgument, "%s is a directory", webPath)
	}
	return nil
}

// requireNotDirectory rejects a write whose destination is an existing directory
func requireNotDirectory(f *webpath.File, webPath string) error {
	if info, err := f.Stat(); err == nil && info.IsDir() {
		return status.Errorf(codes.InvalidArgument, "%s is a directory", webPath)
	}
	return nil
}

func fsError(err error, webPath string) error {
	switch {
	case os.IsNotExist(err):
		return status.Errorf(codes.NotFound, "%s not found", webPath)
	case os.IsPermission(err):
		return status.Errorf(codes.PermissionDenied, "%s: permission denied", webPath)
	default:
		return status.Errorf(codes.Internal, "%s: %v", webPath, err)
	}
}

func md5Hash(h hash.Hash) *types.HashType {
	return &types.HashType{
		Method: types.HashType_MD5,
		Hash:   h.Sum(nil),
	}
}

func verifyHash(want *types.HashType, h hash.Hash) error {
	if want.GetMethod() != types.HashType_MD5 {
		return status.Errorf(codes.Unimplemented, "only MD5 hashes are supported, got %v", want.GetMethod())
	}
	if got := h.Sum(nil); string(got) != string(want.GetHash()) {
		return status.Errorf(codes.DataLoss, "hash mismatch: got %x, want %x", got, want.GetHash())
	}
	return nil
}

// toOctalDigits renders mode as the decimal number whose digits are its
// octal form, e.g. 0644 becomes 644.
func toOctalDigits(mode os.FileMode) uint32 {
	v, _ := strconv.ParseUint(strconv.FormatUint(uint64(mode), 8), 10, 32)
	return uint32(v)
}

func fromOctalDigits(perm uint32) (os.FileMode, error) {
	v, err := strconv.ParseUint(strconv.FormatUint(uint64(perm), 10), 8, 32)
	if err != nil {
		return 0, err
	}
	if v > 0777 {
		return 0, fmt.Errorf("permissions %d out of range", perm)
	}
	return os.FileMode(v), nil
}
