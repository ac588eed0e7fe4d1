package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

func TestSession_Fields(t *testing.T) {
	typ := reflect.TypeOf(Session{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "EventID", "not null")
	assertGormTag(t, typ, "EventID", "index")
	assertGormTag(t, typ, "SideAEmail", "size:128")
	assertGormTag(t, typ, "SideBEmail", "size:128")
	assertGormTag(t, typ, "Status", "default:upcoming")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "MatchToken", "size:36")
}

func TestRoom_Fields(t *testing.T) {
	typ := reflect.TypeOf(Room{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "EventID", "uniqueIndex:idx_event_email")
	assertGormTag(t, typ, "Email", "uniqueIndex:idx_event_email")
	assertGormTag(t, typ, "Group", "not null")
	assertGormTag(t, typ, "RoomID", "size:36")
	assertGormTag(t, typ, "Active", "default:true")
}

func TestEvent_Fields(t *testing.T) {
	typ := reflect.TypeOf(Event{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "Title", "not null")
}

func TestValidAdminStatus(t *testing.T) {
	for _, s := range []string{StatusAvailable, StatusBusy, StatusCompleted} {
		if !ValidAdminStatus(s) {
			t.Errorf("ValidAdminStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{StatusUpcoming, "", "snoozed", "BUSY"} {
		if ValidAdminStatus(s) {
			t.Errorf("ValidAdminStatus(%q) = true, want false", s)
		}
	}
}
