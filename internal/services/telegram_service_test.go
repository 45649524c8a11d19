package services

import (
	"testing"
	"time"

	"sprout/internal/testutil"
)

func TestGenerateLinkCode(t *testing.T) {
	t.Run("creates_link_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTelegramService(db)

		user := testutil.CreateTestUser(t, db)

		code, expiresAt, err := svc.GenerateLinkCode(user.ID)
		testutil.AssertNoError(t, err)

		if len(code) != linkCodeLength {
			t.Errorf("expected %d character code, got %q", linkCodeLength, code)
		}
		if !expiresAt.After(time.Now()) {
			t.Error("expected expiry in the future")
		}

		link, err := svc.GetLinkStatus(user.ID)
		testutil.AssertNoError(t, err)
		if link.IsActive {
			t.Error("link must not be active before the code is redeemed")
		}
	})

	t.Run("regenerating_replaces_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTelegramService(db)

		user := testutil.CreateTestUser(t, db)

		first, _, err := svc.GenerateLinkCode(user.ID)
		testutil.AssertNoError(t, err)
		second, _, err := svc.GenerateLinkCode(user.ID)
		testutil.AssertNoError(t, err)

		if first == second {
			t.Error("expected a fresh code on regeneration")
		}

		// The stale code no longer completes.
		_, err = svc.CompleteLink(first, 12345, 12345, "user", "User")
		testutil.AssertAppError(t, err, "INVALID_INVITE_CODE")
	})
}

func TestCompleteLink(t *testing.T) {
	t.Run("valid_code_activates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTelegramService(db)

		user := testutil.CreateTestUser(t, db)
		code, _, err := svc.GenerateLinkCode(user.ID)
		testutil.AssertNoError(t, err)

		link, err := svc.CompleteLink(code, 99887766, 55443322, "sprout_user", "Alex")
		testutil.AssertNoError(t, err)

		if !link.IsActive {
			t.Error("expected link active after completion")
		}
		if link.TelegramUserID != 99887766 || link.ChatID != 55443322 {
			t.Error("expected Telegram identifiers stored on the link")
		}
		if link.LinkCode != "" {
			t.Error("expected the code cleared once redeemed")
		}
	})

	t.Run("expired_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTelegramService(db)

		user := testutil.CreateTestUser(t, db)
		code, _, err := svc.GenerateLinkCode(user.ID)
		testutil.AssertNoError(t, err)

		past := time.Now().Add(-time.Minute)
		db.Exec("UPDATE telegram_links SET link_code_expires_at = ? WHERE user_id = ?", past, user.ID)

		_, err = svc.CompleteLink(code, 12345, 12345, "late", "Late")
		testutil.AssertAppError(t, err, "INVALID_INVITE_CODE")
	})

	t.Run("telegram_account_already_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTelegramService(db)

		first := testutil.CreateTestUser(t, db)
		code, _, err := svc.GenerateLinkCode(first.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.CompleteLink(code, 11111, 11111, "taken", "Taken")
		testutil.AssertNoError(t, err)

		second := testutil.CreateTestUser(t, db)
		code, _, err = svc.GenerateLinkCode(second.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.CompleteLink(code, 11111, 11111, "taken", "Taken")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUnlink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTelegramService(db)

	user := testutil.CreateTestUser(t, db)
	_, _, err := svc.GenerateLinkCode(user.ID)
	testutil.AssertNoError(t, err)

	err = svc.Unlink(user.ID)
	testutil.AssertNoError(t, err)

	_, err = svc.GetLinkStatus(user.ID)
	testutil.AssertAppError(t, err, "NOT_FOUND")

	err = svc.Unlink(user.ID)
	testutil.AssertAppError(t, err, "NOT_FOUND")
}

func TestActiveLinksForHousehold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTelegramService(db)

	owner := testutil.CreateTestUser(t, db)
	household := testutil.CreateTestHousehold(t, db, owner)
	partner := testutil.AddTestPartner(t, db, household)

	// Owner links and activates; partner only generates a code.
	code, _, err := svc.GenerateLinkCode(owner.ID)
	testutil.AssertNoError(t, err)
	_, err = svc.CompleteLink(code, 222333, 222333, "owner", "Owner")
	testutil.AssertNoError(t, err)
	_, _, err = svc.GenerateLinkCode(partner.ID)
	testutil.AssertNoError(t, err)

	links, err := svc.ActiveLinksForHousehold(household.ID)
	testutil.AssertNoError(t, err)
	if len(links) != 1 {
		t.Fatalf("expected 1 active link, got %d", len(links))
	}
	if links[0].UserID != owner.ID {
		t.Error("expected the owner's link")
	}
}

func TestRecordMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTelegramService(db)

	user := testutil.CreateTestUser(t, db)
	code, _, err := svc.GenerateLinkCode(user.ID)
	testutil.AssertNoError(t, err)
	_, err = svc.CompleteLink(code, 424242, 424242, "chatty", "Chatty")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.RecordMessage(424242))
	testutil.AssertNoError(t, svc.RecordMessage(424242))

	link, err := svc.GetLinkStatus(user.ID)
	testutil.AssertNoError(t, err)
	if link.MessageCount != 2 {
		t.Errorf("expected message count 2, got %d", link.MessageCount)
	}
	if link.LastMessageAt == nil {
		t.Error("expected last message timestamp set")
	}
}
