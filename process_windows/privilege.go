//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"procctl/process"
)

var (
	modadvapi32               = windows.NewLazySystemDLL("advapi32.dll")
	procAdjustTokenPrivileges = modadvapi32.NewProc("AdjustTokenPrivileges")
)

// GrantPrivilege enables a named privilege on the calling security context.
// The thread impersonation token is tried first; absence of one is not an
// error and the process primary token is used instead. Partial assignment
// (ERROR_NOT_ALL_ASSIGNED alongside a successful adjust call) is a hard
// failure.
func GrantPrivilege(name string) error {
	var token windows.Token
	err := windows.OpenThreadToken(windows.CurrentThread(),
		windows.TOKEN_QUERY|windows.TOKEN_ADJUST_PRIVILEGES, false, &token)
	if err != nil {
		if !errors.Is(err, windows.ERROR_NO_TOKEN) {
			return fmt.Errorf("open thread token: %w", err)
		}
		if err = windows.OpenProcessToken(windows.CurrentProcess(),
			windows.TOKEN_QUERY|windows.TOKEN_ADJUST_PRIVILEGES, &token); err != nil {
			return fmt.Errorf("open process token: %w", err)
		}
	}
	defer token.Close()

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return fmt.Errorf("privilege name: %w", err)
	}

	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, namePtr, &luid); err != nil {
		return fmt.Errorf("lookup privilege %q: %w", name, err)
	}

	priv := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{
			{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED},
		},
	}

	// Raw call so the last error survives: AdjustTokenPrivileges reports
	// success even when no privilege was assigned.
	ret, _, callErr := procAdjustTokenPrivileges.Call(
		uintptr(token),
		0,
		uintptr(unsafe.Pointer(&priv)),
		uintptr(unsafe.Sizeof(priv)),
		0,
		0,
	)
	if ret == 0 {
		return fmt.Errorf("adjust privilege %q: %w", name, callErr)
	}
	if errors.Is(callErr, windows.ERROR_NOT_ALL_ASSIGNED) {
		return fmt.Errorf("%w: %s", process.ErrPrivilegeNotAssigned, name)
	}
	return nil
}
