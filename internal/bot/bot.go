package bot

import (
	"context"
	"fmt"
	"time"

	"volunteerbot/internal/common"
	"volunteerbot/internal/config"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// How often the run loop checks whether housekeeping is due
const housekeepingCycle = time.Minute

type Bot struct {
	token                string
	guildId              string
	roleName             string
	logChannelName       string
	schools              []string
	sessionTimeout       time.Duration
	database             *DatabaseBot
	sessions             *Sessions
	housekeepingExecutor common.TimedExecutor
	now                  func() time.Time
}

func CreateBot(cfg config.Config) (*Bot, error) {

	// Database
	database, err := CreateDatabaseBot(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("could not open volunteer database: %w", err)
	}

	bot := &Bot{
		token:          cfg.Token,
		guildId:        cfg.GuildID,
		roleName:       cfg.RoleName,
		logChannelName: cfg.LogChannelName,
		schools:        append([]string(nil), cfg.Schools...),
		sessionTimeout: cfg.SessionTimeout,
		database:       database,
		now:            time.Now,
	}
	bot.sessions = NewSessions(func() time.Time { return bot.now() })
	// Expired sessions are looked for at most once per timeout
	bot.housekeepingExecutor = common.NewTimedExecutor(cfg.SessionTimeout, bot.housekeeping)

	return bot, nil
}

// Connect to the platform and handle events until ctx is done
func (bot *Bot) Run(ctx context.Context) error {

	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsDirectMessages

	// Event handlers
	discord.AddHandler(bot.ready)
	discord.AddHandler(bot.guildMemberAdd)
	discord.AddHandler(bot.interactionCreate)

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()

	if err := bot.registerCommands(discord, discord.State.User.ID); err != nil {
		return err
	}

	log.Info().Msg("Bot running")
	bot.loop(ctx)
	log.Info().Msg("Shutting down")
	return nil
}

func (bot *Bot) loop(ctx context.Context) {
	if bot.sessionTimeout <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(housekeepingCycle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bot.housekeepingExecutor.Execute()
		}
	}
}

// Drop sessions abandoned for longer than the timeout
func (bot *Bot) housekeeping() {
	if bot.sessionTimeout <= 0 {
		return
	}
	expired := bot.sessions.Expire(bot.sessionTimeout)
	if len(expired) > 0 {
		log.Info().Msg(fmt.Sprintf("Expired %d onboarding sessions", len(expired)))
	}
}

type commandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Register the slash commands in the configured guild, or globally
func (bot *Bot) registerCommands(discord commandRegistrar, appId string) error {
	commands := []*discordgo.ApplicationCommand{
		{Name: COMMAND_NAME_ONBOARD, Description: "Start volunteer onboarding"},
		{Name: COMMAND_NAME_FINISH, Description: "Finish volunteer onboarding after selecting school and entering details"},
	}
	if _, err := discord.ApplicationCommandBulkOverwrite(appId, bot.guildId, commands); err != nil {
		if bot.guildId != "" {
			return fmt.Errorf("could not register commands in guild %s: %w", bot.guildId, err)
		}
		return fmt.Errorf("could not register commands globally: %w", err)
	}
	if bot.guildId != "" {
		log.Info().Msg(fmt.Sprintf("Registered commands in guild %s", bot.guildId))
	} else {
		log.Info().Msg("Registered commands globally")
	}
	return nil
}

func (bot *Bot) ready(discord *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Msg(fmt.Sprintf("Logged in as %s (ID: %s)", ready.User.String(), ready.User.ID))
}

func (bot *Bot) guildMemberAdd(discord *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.Member.User == nil {
		return
	}
	guildName := "the server"
	if guild, err := discord.State.Guild(event.GuildID); err == nil && guild.Name != "" {
		guildName = guild.Name
	}
	bot.memberJoined(discord, event.GuildID, guildName, event.Member.User)
}

func (bot *Bot) interactionCreate(discord *discordgo.Session, event *discordgo.InteractionCreate) {
	bot.Receive(discord, event.Interaction)
}

// Route an interaction to its onboarding step and answer it
func (bot *Bot) Receive(discord Discord, interaction *discordgo.Interaction) {

	parseResult := Parse(interaction, bot.schools)
	switch parseResult.parseid {
	case PARSEID_IGNORED:
		return
	case PARSEID_OK:
		log.Debug().Msg(fmt.Sprintf("Interaction %d from member %s", parseResult.command, parseResult.actor.UserId))
		var responses []Response
		switch parseResult.command {
		case COMMAND_BEGIN:
			responses = bot.begin(parseResult.actor)
		case COMMAND_FINISH:
			responses = bot.finish(discord, parseResult.actor)
		case COMMAND_SELECT_SCHOOL:
			responses = bot.selectSchool(parseResult.actor, parseResult.arguments.(SchoolChosen))
		case COMMAND_OPEN_DETAILS:
			responses = bot.openDetails(parseResult.actor)
		case COMMAND_SUBMIT_DETAILS:
			responses = bot.submitDetails(parseResult.actor, parseResult.arguments.(DetailsSubmitted))
		default:
			log.Error().Msg(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
			return
		}
		respond(discord, interaction, responses)
	default:
		// The interaction is invalid input, so it contains an error message
		log.Warn().Msg(fmt.Sprintf("Wrong input from %s: %s", parseResult.actor.UserId, parseResult.errorMessage))
		respond(discord, interaction, []Response{InputNotValid(parseResult.errorMessage)})
	}
}
