package constants

// 队列与任务
const (
	QueueDefault            = "default"
	TaskActivationCodeIssue = "account:activation_code_issue"
)

// 邮件驱动
const (
	EmailDriverMailpit = "mailpit"
	EmailDriverSMTP    = "smtp"
	EmailDriverLog     = "log"
)

// 激活码默认有效期（秒）
const DefaultActivationCodeTTLSeconds = 60

// 运行模式
const (
	ServerModeDebug   = "debug"
	ServerModeRelease = "release"
)
