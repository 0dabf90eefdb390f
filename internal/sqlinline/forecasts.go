package sqlinline

const QUpsertForecast = `--sql 87ffce27-3400-40b1-af0d-75a0b244b2d7
insert into forecasts (id, user_id, type, period_start, period_end, title, content,
    summary, audio_url, audio_duration_seconds, prompt_version, model_used,
    calculation_base, expires_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, nullif($9, ''), $10, $11, $12, $13, $14)
on conflict (user_id, type, period_start) do update
set period_end = excluded.period_end,
    title = excluded.title,
    content = excluded.content,
    summary = excluded.summary,
    audio_url = excluded.audio_url,
    audio_duration_seconds = excluded.audio_duration_seconds,
    prompt_version = excluded.prompt_version,
    model_used = excluded.model_used,
    calculation_base = excluded.calculation_base,
    expires_at = excluded.expires_at,
    updated_at = now();
`

const QExpiredForecasts = `--sql c3c8b924-fdcc-49ac-b95d-dab01b3ebcbb
select id, coalesce(audio_url, '')
from forecasts
where expires_at is not null and expires_at < $1;
`

const QDeleteForecast = `--sql b3f96c2a-8e4d-4f5a-9c1b-2d7e8a6f4c3d
delete from forecasts where id = $1;
`
