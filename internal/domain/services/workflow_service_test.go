package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline-http-service/internal/domain/models"
)

func newTestWorkflow(t *testing.T) (*WorkflowService, *MasterService) {
	t.Helper()
	ctx := context.Background()
	master, _ := newTestMaster(t)
	require.NoError(t, master.CreateCompany(ctx, models.Company{
		ID: "c1", Name: "協力会社A", Emails: []string{"kyoryoku-a@example.co.jp"},
	}))
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{
		ID: "S001", Name: "山田太郎", CompanyID: "c1",
	}))

	wf := NewWorkflowService(master)
	wf.now = func() time.Time {
		return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	}
	return wf, master
}

func TestWorkflowHappyPath(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	assert.Equal(t, models.StateIdle, session.State)

	// 容态确认
	session, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriYes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateTriageEntered, session.State)
	assert.False(t, session.Emergency.Triggered)
	assert.Equal(t, models.ActionObserve, session.Action)

	// 场所
	session, err = wf.SetLocation(session.ID, models.LocationChoice{LocationID: "loc_kita_joban_2"})
	require.NoError(t, err)
	assert.Equal(t, models.StateLocationSet, session.State)

	// 事故类型（転倒はデフォルト緊急）
	session, err = wf.SetAccident(session.ID, "sit_fall", []string{"bp_head"}, "足場から転落")
	require.NoError(t, err)
	assert.Equal(t, models.ActionEmergency, session.Action)

	// 被灾者
	session, err = wf.SetVictim(session.ID, models.VictimChoice{StaffID: "S001"})
	require.NoError(t, err)
	assert.Equal(t, models.StateVictimSet, session.State)

	// 确认画面
	session, err = wf.SkipToReview(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateReviewed, session.State)

	// 发出后不能再修改
	session, err = wf.MarkSent(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateSent, session.State)
	_, err = wf.SetVictim(session.ID, models.VictimChoice{Unknown: true})
	assert.ErrorIs(t, err, ErrReportFinalized)
}

func TestLocationRequiresTriage(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()

	_, err := wf.SetLocation(session.ID, models.LocationChoice{LocationID: "loc_soko"})
	assert.ErrorIs(t, err, ErrTriageIncomplete)

	// 意识已选呼吸未选仍不通过
	_, err = wf.SetTriage(session.ID, models.Triage{Conscious: models.TriYes})
	require.NoError(t, err)
	_, err = wf.SetLocation(session.ID, models.LocationChoice{LocationID: "loc_soko"})
	assert.ErrorIs(t, err, ErrTriageIncomplete)
}

func TestLocationChoiceValidation(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	_, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriYes,
	})
	require.NoError(t, err)

	// 三者全空
	_, err = wf.SetLocation(session.ID, models.LocationChoice{})
	assert.ErrorIs(t, err, ErrLocationUnresolved)

	// 未知の場所ID
	_, err = wf.SetLocation(session.ID, models.LocationChoice{LocationID: "loc_nashi"})
	assert.ErrorIs(t, err, ErrLocationNotFound)

	// 手动输入可通过
	session, err = wf.SetLocation(session.ID, models.LocationChoice{Manual: "正門前の駐車場"})
	require.NoError(t, err)
	assert.Equal(t, "正門前の駐車場", session.Location.Manual)
}

func TestEmergencySubFlowTriggersOnce(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()

	// 意识・呼吸双无 → 启动序列
	session, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriNo, Breathing: models.TriNo,
	})
	require.NoError(t, err)
	assert.True(t, session.Emergency.Triggered)
	assert.Equal(t, models.ActionEmergency, session.Action)
	require.Len(t, session.Emergency.Steps, 6)
	assert.Equal(t, models.StepCallAmbulance, session.Emergency.Steps[0].Name)

	// 完成前两步
	session, err = wf.ConfirmEmergencyStep(session.ID, models.StepCallAmbulance, true)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Emergency.Current)
	session, err = wf.ConfirmEmergencyStep(session.ID, models.StepSendSMS, false)
	require.NoError(t, err)
	assert.True(t, session.Emergency.Steps[1].Skipped)

	// 容态改回有意识再改回双无，序列不重启、进度不回退
	_, err = wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriYes,
	})
	require.NoError(t, err)
	session, err = wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriNo, Breathing: models.TriNo,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, session.Emergency.Current)
	assert.True(t, session.Emergency.Steps[0].Done)
}

func TestEmergencyStepConfirmIsIdempotent(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	session, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriNo, Breathing: models.TriNo,
	})
	require.NoError(t, err)

	session, err = wf.ConfirmEmergencyStep(session.ID, models.StepCallAmbulance, true)
	require.NoError(t, err)

	// 重复确认已过步骤是无操作
	session, err = wf.ConfirmEmergencyStep(session.ID, models.StepCallAmbulance, true)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Emergency.Current)

	// 未到的步骤同样无操作
	session, err = wf.ConfirmEmergencyStep(session.ID, models.StepConclude, true)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Emergency.Current)
}

func TestEmergencySubFlowNotTriggeredWithoutBothNo(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()

	session, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriNo, Breathing: models.TriYes,
	})
	require.NoError(t, err)
	assert.False(t, session.Emergency.Triggered)
	// 意识为"无"本身已是紧急对应
	assert.Equal(t, models.ActionEmergency, session.Action)
}

func TestRestartClearsEmergencyTrigger(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	_, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriNo, Breathing: models.TriNo,
	})
	require.NoError(t, err)

	// 重开是会话边界，一次性标志随之清零
	session, err = wf.RestartSession(session.ID)
	require.NoError(t, err)
	assert.False(t, session.Emergency.Triggered)
	assert.Equal(t, models.StateIdle, session.State)

	session, err = wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriNo, Breathing: models.TriNo,
	})
	require.NoError(t, err)
	assert.True(t, session.Emergency.Triggered)
}

func TestSkipToReviewFillsUnknowns(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	_, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriUnknown,
	})
	require.NoError(t, err)

	session, err = wf.SkipToReview(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateReviewed, session.State)
	// 未定项按明确不明补齐
	assert.True(t, session.Location.Unknown)
	assert.True(t, session.Victim.Unknown)
}

func TestContinuationConsumedExactlyOnce(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()

	invoked := 0
	wf.SetContinuation(session.ID, func() { invoked++ })

	assert.True(t, wf.ConsumeContinuation(session.ID))
	assert.False(t, wf.ConsumeContinuation(session.ID))
	assert.Equal(t, 1, invoked)

	// 未挂回调时消费是无操作
	assert.False(t, wf.ConsumeContinuation("session-nashi"))
}

func TestBuildPreview(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	_, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriYes, Bleeding: models.TriNo,
	})
	require.NoError(t, err)
	_, err = wf.SetLocation(session.ID, models.LocationChoice{LocationID: "loc_kita_joban_2"})
	require.NoError(t, err)
	_, err = wf.SetAccident(session.ID, "sit_fall", []string{"bp_head", "bp_arm"}, "足場から転落")
	require.NoError(t, err)
	_, err = wf.SetVictim(session.ID, models.VictimChoice{StaffID: "S001"})
	require.NoError(t, err)
	_, err = wf.SkipToReview(session.ID)
	require.NoError(t, err)

	preview, err := wf.BuildPreview(session.ID)
	require.NoError(t, err)

	assert.Equal(t, "【事故報告】転倒・転落 北定盤2", preview.Subject)
	assert.Contains(t, preview.Body, "発生場所: 北定盤2")
	assert.Contains(t, preview.Body, "頭部・腕")
	assert.Contains(t, preview.Body, "山田太郎（S001）")
	assert.Contains(t, preview.Body, "意識:あり 呼吸:あり 出血:なし 痛み:未確認")
	assert.Contains(t, preview.Body, "足場から転落")
	assert.Contains(t, preview.Body, "2026-08-28 10:30")

	// 收件人: 启用中的通知组 + 被灾者所属会社，去重保序。
	// sit_fallはデフォルト緊急、grp_infirmaryは無効なので含まれない。
	assert.Equal(t, []string{
		"safety@example.co.jp",
		"managers@example.co.jp",
		"kyoryoku-a@example.co.jp",
	}, preview.Recipients)
}

func TestBuildPreviewUnknownVictimAndLocation(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	session := wf.CreateSession()
	_, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriYes,
	})
	require.NoError(t, err)
	_, err = wf.SkipToReview(session.ID)
	require.NoError(t, err)

	preview, err := wf.BuildPreview(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "【事故報告】不明", preview.Subject)
	assert.Contains(t, preview.Body, "被災者: 不明")
}

func TestDisabledGroupExcludedFromRecipients(t *testing.T) {
	wf, master := newTestWorkflow(t)
	ctx := context.Background()
	// 全组停用後は会社アドレスのみ残る
	require.NoError(t, master.SetContactGroupEnabled(ctx, "grp_safety", false))
	require.NoError(t, master.SetContactGroupEnabled(ctx, "grp_managers", false))

	session := wf.CreateSession()
	_, err := wf.SetTriage(session.ID, models.Triage{
		Conscious: models.TriYes, Breathing: models.TriYes,
	})
	require.NoError(t, err)
	_, err = wf.SetLocation(session.ID, models.LocationChoice{LocationID: "loc_soko"})
	require.NoError(t, err)
	_, err = wf.SetAccident(session.ID, "sit_cut", nil, "")
	require.NoError(t, err)
	_, err = wf.SetVictim(session.ID, models.VictimChoice{StaffID: "S001"})
	require.NoError(t, err)

	preview, err := wf.BuildPreview(session.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"kyoryoku-a@example.co.jp"}, preview.Recipients)
}

func TestBuildURIs(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	preview := &models.Preview{
		Recipients: []string{"a@example.co.jp", "b@example.co.jp"},
		Subject:    "【事故報告】転倒 北定盤2",
		Body:       "発生場所: 北定盤2\n至急",
	}

	mail := wf.BuildMailURI(preview)
	assert.Contains(t, mail, "mailto:a@example.co.jp,b@example.co.jp?subject=")
	// 空格编码为%20，换行URL编码
	assert.NotContains(t, mail, "+")
	assert.Contains(t, mail, "%0A")

	sms := wf.BuildSMSURI([]string{"09012345678"}, "至急連絡")
	assert.Contains(t, sms, "sms:09012345678?body=")

	assert.Equal(t, "tel:119", wf.BuildTelURI("119"))
}

func TestSessionNotFound(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	_, err := wf.GetSession("session-nashi")
	assert.ErrorIs(t, err, ErrReportNotFound)
	_, err = wf.SetTriage("session-nashi", models.Triage{})
	assert.ErrorIs(t, err, ErrReportNotFound)
	_, err = wf.BuildPreview("session-nashi")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
