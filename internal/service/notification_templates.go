package service

// NotificationKind names one of the transactional mail templates.
type NotificationKind string

const (
	NotifySubmissionConfirmation NotificationKind = "submission_confirmation"
	NotifyAdminNewApplication    NotificationKind = "admin_new_application"
	NotifyDraftReady             NotificationKind = "draft_ready"
	NotifyProductionApproved     NotificationKind = "production_approved"
	NotifyModificationRequested  NotificationKind = "modification_requested"
	NotifyOrderCompleted         NotificationKind = "order_completed"
)

type templateSource struct {
	subject string
	body    string
}

// Subjects are text/template, bodies html/template; both receive a
// notificationView.
var notificationTemplates = map[NotificationKind]templateSource{
	NotifySubmissionConfirmation: {
		subject: `[{{.Organization}}] 명함 신청이 접수되었습니다`,
		body: `<h2>명함 신청 접수 확인</h2>
<p>안녕하세요,</p>
<p>귀하의 명함 신청이 정상적으로 접수되었습니다.</p>
<p><strong>신청ID:</strong> {{.ApplicationID}}</p>
<p>처리 상태는 <a href="{{.StatusURL}}">여기</a>에서 확인하실 수 있습니다.</p>
<br>
<p>감사합니다.</p>
<p>{{.Organization}}</p>`,
	},
	NotifyAdminNewApplication: {
		subject: `[명함관리] 새로운 명함 신청`,
		body: `<h2>새로운 명함 신청</h2>
<ul>
  <li><strong>신청ID:</strong> {{.ApplicationID}}</li>
  <li><strong>신청자:</strong> {{.ApplicantName}}</li>
  <li><strong>이메일:</strong> {{.ApplicantEmail}}</li>
  <li><strong>통 수:</strong> {{.Quantity}}</li>
  <li><strong>기존 동일 여부:</strong> {{.SameAsExisting}}</li>
  <li><strong>변호사 여부:</strong> {{.IsLawyer}}</li>
  {{- if .LawyerName}}
  <li><strong>담당변호사:</strong> {{.LawyerName}}</li>
  {{- end}}
  {{- if .Remarks}}
  <li><strong>비고:</strong> {{.Remarks}}</li>
  {{- end}}
</ul>
<p><a href="{{.AdminURL}}">관리자 페이지로 이동</a></p>`,
	},
	NotifyDraftReady: {
		subject: `[{{.Organization}}] 명함 초안 확인 요망`,
		body: `<h2>명함 초안 확인 요청</h2>
<p>안녕하세요,</p>
<p>명함 초안이 준비되었습니다. 아래 링크를 통해 확인해주세요.</p>
<p><strong>신청ID:</strong> {{.ApplicationID}}</p>
<p><a href="{{.ConfirmURL}}" style="display:inline-block;padding:10px 20px;background-color:#0066cc;color:white;text-decoration:none;border-radius:5px;">초안 확인하기</a></p>
<p>확인 후 제작 신청 또는 수정 요청을 선택해주세요.</p>
<br>
<p>감사합니다.</p>
<p>{{.Organization}}</p>`,
	},
	NotifyProductionApproved: {
		subject: `[명함관리] 제작 승인`,
		body: `<h2>명함 제작 승인</h2>
<p><strong>신청ID:</strong> {{.ApplicationID}}</p>
<p><strong>신청자:</strong> {{.ApplicantName}}</p>
<p>신청자가 초안을 승인하고 제작을 요청했습니다.</p>
<p><a href="{{.AdminURL}}">관리자 페이지로 이동</a></p>`,
	},
	NotifyModificationRequested: {
		subject: `[명함관리] 수정 요청`,
		body: `<h2>명함 수정 요청</h2>
<p><strong>신청ID:</strong> {{.ApplicationID}}</p>
<p><strong>신청자:</strong> {{.ApplicantName}}</p>
<p><strong>수정 요청 사유:</strong></p>
<p>{{.Reason}}</p>
<p><a href="{{.AdminURL}}">관리자 페이지로 이동</a></p>`,
	},
	NotifyOrderCompleted: {
		subject: `[{{.Organization}}] 명함 제작이 완료되었습니다`,
		body: `<h2>명함 제작 완료</h2>
<p>안녕하세요,</p>
<p>신청하신 명함 {{.Quantity}}통의 제작이 완료되어 지급 준비가 끝났습니다.</p>
<p><strong>신청ID:</strong> {{.ApplicationID}}</p>
<p>처리 상태는 <a href="{{.StatusURL}}">여기</a>에서 확인하실 수 있습니다.</p>
<br>
<p>감사합니다.</p>
<p>{{.Organization}}</p>`,
	},
}
