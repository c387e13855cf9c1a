// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the store, the identity
// context, and the chat engines, and injects them into the tools that
// depend on them. No business logic lives here — only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/crewchat/crewchat/internal/config"
	"github.com/crewchat/crewchat/internal/prompts"
	"github.com/crewchat/crewchat/internal/resources"
	"github.com/crewchat/crewchat/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
func New() *server.MCPServer {
	cfg := config.Load()

	store := chat.NewFileStore(cfg.DataDir)
	identity := chat.NewIdentity(store, cfg.DefaultAgent)

	messages := chat.NewMessageService(store, identity, cfg.WorkspaceRoot)
	taskSvc := chat.NewTaskService(store, identity)
	groups := chat.NewGroupService(store, identity)
	standby := chat.NewStandbyService(store, identity)

	s := server.NewMCPServer(
		"crewchat",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Messaging tools ---

	sendMessage := tools.NewSendMessageTool(messages)
	s.AddTool(sendMessage.Definition(), sendMessage.Handle)

	receiveMessages := tools.NewReceiveMessagesTool(messages, identity)
	s.AddTool(receiveMessages.Definition(), receiveMessages.Handle)

	markRead := tools.NewMarkMessagesReadTool(messages)
	s.AddTool(markRead.Definition(), markRead.Handle)

	requestHelp := tools.NewRequestHelpTool(messages)
	s.AddTool(requestHelp.Definition(), requestHelp.Handle)

	requestReview := tools.NewRequestReviewTool(messages)
	s.AddTool(requestReview.Definition(), requestReview.Handle)

	notifyCompletion := tools.NewNotifyCompletionTool(messages)
	s.AddTool(notifyCompletion.Definition(), notifyCompletion.Handle)

	shareSnippet := tools.NewShareCodeSnippetTool(messages)
	s.AddTool(shareSnippet.Definition(), shareSnippet.Handle)

	// --- Task tools ---

	createTask := tools.NewCreateTaskTool(taskSvc)
	s.AddTool(createTask.Definition(), createTask.Handle)

	assignTask := tools.NewAssignTaskTool(taskSvc)
	s.AddTool(assignTask.Definition(), assignTask.Handle)

	updateTaskStatus := tools.NewUpdateTaskStatusTool(taskSvc)
	s.AddTool(updateTaskStatus.Definition(), updateTaskStatus.Handle)

	getTasks := tools.NewGetTasksTool(taskSvc)
	s.AddTool(getTasks.Definition(), getTasks.Handle)

	deleteTask := tools.NewDeleteTaskTool(taskSvc)
	s.AddTool(deleteTask.Definition(), deleteTask.Handle)

	// --- Group tools ---

	createGroup := tools.NewCreateGroupTool(groups)
	s.AddTool(createGroup.Definition(), createGroup.Handle)

	joinGroup := tools.NewJoinGroupTool(groups)
	s.AddTool(joinGroup.Definition(), joinGroup.Handle)

	leaveGroup := tools.NewLeaveGroupTool(groups)
	s.AddTool(leaveGroup.Definition(), leaveGroup.Handle)

	listGroups := tools.NewListGroupsTool(groups)
	s.AddTool(listGroups.Definition(), listGroups.Handle)

	archiveGroup := tools.NewArchiveGroupTool(groups)
	s.AddTool(archiveGroup.Definition(), archiveGroup.Handle)

	sendGroupMessage := tools.NewSendGroupMessageTool(messages)
	s.AddTool(sendGroupMessage.Definition(), sendGroupMessage.Handle)

	receiveGroupMessages := tools.NewReceiveGroupMessagesTool(messages, identity)
	s.AddTool(receiveGroupMessages.Definition(), receiveGroupMessages.Handle)

	summarizeGroup := tools.NewSummarizeGroupMessagesTool(groups)
	s.AddTool(summarizeGroup.Definition(), summarizeGroup.Handle)

	unreadCounts := tools.NewGetUnreadCountsTool(groups)
	s.AddTool(unreadCounts.Definition(), unreadCounts.Handle)

	pinMessage := tools.NewPinMessageTool(messages)
	s.AddTool(pinMessage.Definition(), pinMessage.Handle)

	unpinMessage := tools.NewUnpinMessageTool(messages)
	s.AddTool(unpinMessage.Definition(), unpinMessage.Handle)

	// --- System tools ---

	registerAgent := tools.NewRegisterAgentTool(store, identity, &cfg)
	s.AddTool(registerAgent.Definition(), registerAgent.Handle)

	setEmployeeConfig := tools.NewSetEmployeeConfigTool(store, &cfg)
	s.AddTool(setEmployeeConfig.Definition(), setEmployeeConfig.Handle)

	getCurrentSession := tools.NewGetCurrentSessionTool(store, identity)
	s.AddTool(getCurrentSession.Definition(), getCurrentSession.Handle)

	listAgents := tools.NewListAgentsTool(store)
	s.AddTool(listAgents.Definition(), listAgents.Handle)

	standbyTool := tools.NewStandbyTool(standby)
	s.AddTool(standbyTool.Definition(), standbyTool.Handle)

	// --- Prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s
}

// serverInstructions returns the system instructions that tell the AI
// how to work inside the team.
func serverInstructions() string {
	return `You have access to crewchat, a coordination server for AI agent teams.

## GETTING STARTED

Register first: call register_agent with your agent name. Registration
opens a session, restores your previous role, and lists any tasks that
are still assigned to you.

## WORKING IN THE TEAM

- Direct messages: send_message / receive_messages / mark_messages_read.
  Recipients are '&'-separated (a&b). Use receive_messages with
  unread_only=true to catch up.
- Structured requests: request_help, request_review, share_code_snippet,
  notify_completion. These post formatted direct messages.
- Tasks: create_task, assign_task, update_task_status, get_tasks,
  delete_task. Statuses are 待开始, 进行中, 已完成, 已阻塞, 已取消.
  You only see tasks assigned to you unless you are the manager.
- Groups: create_group, join_group, send_group_message,
  receive_group_messages, pin_message, get_unread_counts. Only listed
  members belong to a group — include yourself when creating one.

## WAITING FOR WORK

When you have nothing to do, call standby. It returns immediately;
keep calling it until it reports new tasks or messages, or the
5-minute window expires. Do not invent work while standing by.`
}
