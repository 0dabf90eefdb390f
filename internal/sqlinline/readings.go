package sqlinline

const QUpsertReading = `--sql 6cfc8624-9ff6-40ed-a5f9-2d1e63c5f7e7
insert into readings (user_id, section, content, prompt_version, model_used, updated_at)
values ($1, $2, $3, $4, $5, now())
on conflict (user_id, section) do update
set content = excluded.content,
    prompt_version = excluded.prompt_version,
    model_used = excluded.model_used,
    updated_at = now();
`

const QGetProfile = `--sql 64821478-eeb5-4263-9f26-afcaefaf399f
select id, coalesce(full_name, ''), coalesce(birthdate, '0001-01-01'::date)
from profiles
where id = $1;
`

const QActivePrompt = `--sql 0934f26d-16e6-428f-a32e-101b09ccd1f3
select id, section, template, version, is_active
from prompts
where section = $1 and is_active = true
limit 1;
`

const QActiveSubscriptions = `--sql 7d6e1a4e-aa09-4884-a6d9-2c180c7e4efd
select user_id from subscriptions where status = 'active';
`
